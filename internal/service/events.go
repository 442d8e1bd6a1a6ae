package service

import "github.com/cuepointapp/cuepoint-server/internal/sse"

// EventEmitter receives service events. *sse.Manager implements it.
type EventEmitter interface {
	Emit(event sse.Event)
}

// NoopEmitter drops every event. Used by the CLI, which has no listeners.
type NoopEmitter struct{}

// Emit implements EventEmitter.
func (NoopEmitter) Emit(sse.Event) {}

func orNoop(e EventEmitter) EventEmitter {
	if e == nil {
		return NoopEmitter{}
	}
	return e
}
