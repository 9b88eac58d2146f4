// Package tui implements the interactive vncview screen with Bubble Tea.
//
// The viewer screen holds an endpoint field, the live connection state and
// the most recent notifications. It drives a viewer.Manager: key presses call
// Connect, Disconnect and ResetInput, and the manager's listener callbacks
// reach the program through a Bridge, which queues them without blocking and
// hands them over as one message per wake-up.
//
// A second screen lists saved endpoints and servers found over mDNS; picking
// one fills the endpoint field.
//
// # Architecture
//
//	AppModel
//	├── ViewerModel  endpoint field, status, notices
//	└── PickerModel  saved and discovered endpoints
//
// The remote display itself is not drawn. Frames are written to a
// StreamCounter, which the status panel summarises.
//
// # Usage
//
//	err := tui.Run(tui.Options{
//	    Factory:  rfb.NewWSFactory(),
//	    Session:  rfb.Options{ViewOnly: true},
//	    Endpoint: "wss://lab.example.com:6080",
//	})
package tui
