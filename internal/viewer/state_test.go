package viewer

import "testing"

func TestTransitionTable(t *testing.T) {
	phases := []Phase{Idle, Connecting, Connected, Disconnecting, Failed}
	triggers := []Trigger{
		TriggerConnect,
		TriggerDisconnect,
		TriggerTeardown,
		TriggerSessionConnect,
		TriggerSessionDisconnect,
		TriggerSecurityFailure,
		TriggerCredentialsRequired,
		TriggerSettle,
	}

	type key struct {
		from Phase
		t    Trigger
	}
	want := map[key]Phase{
		{Idle, TriggerConnect}:  Connecting,
		{Idle, TriggerTeardown}: Idle,

		{Connecting, TriggerSessionConnect}:      Connected,
		{Connecting, TriggerSessionDisconnect}:   Idle,
		{Connecting, TriggerSecurityFailure}:     Failed,
		{Connecting, TriggerCredentialsRequired}: Connecting,
		{Connecting, TriggerDisconnect}:          Disconnecting,
		{Connecting, TriggerTeardown}:            Idle,

		{Connected, TriggerSessionDisconnect}:   Idle,
		{Connected, TriggerCredentialsRequired}: Connected,
		{Connected, TriggerDisconnect}:          Disconnecting,
		{Connected, TriggerTeardown}:            Idle,

		{Disconnecting, TriggerSettle}:   Idle,
		{Disconnecting, TriggerTeardown}: Idle,

		{Failed, TriggerSettle}:   Idle,
		{Failed, TriggerTeardown}: Idle,
	}

	for _, from := range phases {
		for _, trig := range triggers {
			got, ok := Next(from, trig)
			exp, wantOK := want[key{from, trig}]
			if ok != wantOK {
				t.Errorf("Next(%v, %s) ok = %v, want %v", from, trig, ok, wantOK)
				continue
			}
			if ok && got != exp {
				t.Errorf("Next(%v, %s) = %v, want %v", from, trig, got, exp)
			}
		}
	}
}

func TestStateProjection(t *testing.T) {
	tests := []struct {
		state         State
		busy          bool
		canConnect    bool
		canDisconnect bool
		str           string
	}{
		{State{Phase: Idle}, false, true, false, "Idle"},
		{State{Phase: Connecting, Endpoint: "ws://h"}, true, false, true, "Connecting(ws://h)"},
		{State{Phase: Connected, Endpoint: "ws://h"}, false, false, true, "Connected(ws://h)"},
		{State{Phase: Disconnecting, Endpoint: "ws://h"}, true, false, false, "Disconnecting(ws://h)"},
		{State{Phase: Failed, Reason: "denied"}, false, false, false, "Failed(denied)"},
	}

	for _, tt := range tests {
		if got := tt.state.Busy(); got != tt.busy {
			t.Errorf("%v.Busy() = %v, want %v", tt.state, got, tt.busy)
		}
		if got := tt.state.CanConnect(); got != tt.canConnect {
			t.Errorf("%v.CanConnect() = %v, want %v", tt.state, got, tt.canConnect)
		}
		if got := tt.state.CanDisconnect(); got != tt.canDisconnect {
			t.Errorf("%v.CanDisconnect() = %v, want %v", tt.state, got, tt.canDisconnect)
		}
		if got := tt.state.String(); got != tt.str {
			t.Errorf("String() = %q, want %q", got, tt.str)
		}
	}

	if Phase(42).String() != "Phase(42)" {
		t.Errorf("unknown phase String() = %q", Phase(42).String())
	}
}
