package tui

import (
	"fmt"
	"sync/atomic"
)

// StreamCounter is the display container for the terminal viewer. It records
// how much of the remote-display stream has arrived without rendering it.
type StreamCounter struct {
	frames atomic.Int64
	bytes  atomic.Int64
}

// Write implements io.Writer; each call is one frame
func (c *StreamCounter) Write(p []byte) (int, error) {
	c.frames.Add(1)
	c.bytes.Add(int64(len(p)))
	return len(p), nil
}

// Reset zeroes the counters
func (c *StreamCounter) Reset() {
	c.frames.Store(0)
	c.bytes.Store(0)
}

// Frames returns the number of frames received
func (c *StreamCounter) Frames() int64 {
	return c.frames.Load()
}

// Bytes returns the number of bytes received
func (c *StreamCounter) Bytes() int64 {
	return c.bytes.Load()
}

// String summarises the counters, e.g. "12 frames, 3.4 KiB"
func (c *StreamCounter) String() string {
	return fmt.Sprintf("%d frames, %s", c.Frames(), formatBytes(c.Bytes()))
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
