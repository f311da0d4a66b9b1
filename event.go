// Copyright 2021 The easyhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package easyhttp

// An Event identifies the event type when installing or running a
// Handler. Install event handlers in a Handle to extend it with custom
// functionality such as metrics or request tracing.
type Event int

const (
	// BeforeExec identifies the event that occurs when Exec is called,
	// before anything is set on the engine session.
	//
	// When BeforeExec fires, the execution's ID, Method, URI, Header,
	// HasBody, BodySize, and Start fields are set. Handlers may add
	// headers to the execution's Header, and those headers are sent.
	BeforeExec Event = iota
	// BeforePerform identifies the event that occurs after the request
	// has been fully translated onto the engine session, immediately
	// before the transfer.
	//
	// When BeforePerform fires, the execution's Lines field holds the
	// custom header list handed to the engine. BeforePerform does not
	// fire if Exec fails before the transfer starts.
	BeforePerform
	// AfterExec identifies the event that occurs when Exec is about to
	// return, whether it succeeded or not.
	//
	// When AfterExec fires, the execution's End field is set, and
	// either Response or Err is set.
	AfterExec

	numEvents int = iota
)

var eventNames = []string{
	"BeforeExec",
	"BeforePerform",
	"AfterExec",
}

// Events returns a slice containing all events which can occur during
// Exec, in the order in which they would occur.
func Events() []Event {
	return []Event{
		BeforeExec,
		BeforePerform,
		AfterExec,
	}
}

// Name returns the name of the event.
func (evt Event) Name() string {
	return eventNames[int(evt)]
}

// String returns the name of the event.
func (evt Event) String() string {
	return evt.Name()
}
