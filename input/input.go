package input

import (
	"github.com/jsphweid/tapchord/model"
	"github.com/pkg/errors"
)

// RawEvent is a device event as a browser reports it. Type is one of
// keydown, keyup, pointerdown, pointerup or pointercancel.
type RawEvent struct {
	Type      string
	Key       string
	PointerID int
	Repeat    bool
}

type KeyEvent struct {
	Key    string
	Down   bool
	Repeat bool
}

type PointerEvent struct {
	PointerID int
	Down      bool
}

// Dispatcher turns device specific events into press events and hands them
// to a handler, one at a time, in arrival order.
type Dispatcher struct {
	handle func(model.PressEvent) bool
}

func NewDispatcher(handle func(model.PressEvent) bool) *Dispatcher {
	return &Dispatcher{handle: handle}
}

func FromKey(e KeyEvent) model.PressEvent {
	return model.PressEvent{
		ID:       model.Key(e.Key),
		Phase:    phase(e.Down),
		IsRepeat: e.Repeat,
		Label:    e.Key,
	}
}

func FromPointer(e PointerEvent) model.PressEvent {
	return model.PressEvent{
		ID:    model.Pointer(e.PointerID),
		Phase: phase(e.Down),
	}
}

// FromMidi maps a keyboard controller note to a press. Each controller key is
// its own press source.
func FromMidi(note uint8, down bool) model.PressEvent {
	return model.PressEvent{
		ID:    model.MidiKey(note),
		Phase: phase(down),
	}
}

var ErrUnknownEventType = errors.New("unknown event type")

// FromRaw picks the key identity for key events and the pointer identity for
// pointer events. A cancelled pointer counts as released.
func FromRaw(e RawEvent) (model.PressEvent, error) {
	switch e.Type {
	case "keydown", "keyup":
		return FromKey(KeyEvent{Key: e.Key, Down: e.Type == "keydown", Repeat: e.Repeat}), nil
	case "pointerdown", "pointerup", "pointercancel":
		return FromPointer(PointerEvent{PointerID: e.PointerID, Down: e.Type == "pointerdown"}), nil
	}
	return model.PressEvent{}, errors.Wrapf(ErrUnknownEventType, "%q", e.Type)
}

func phase(down bool) model.Phase {
	if down {
		return model.Down
	}
	return model.Up
}

func (d *Dispatcher) Key(e KeyEvent) bool {
	return d.handle(FromKey(e))
}

func (d *Dispatcher) Pointer(e PointerEvent) bool {
	return d.handle(FromPointer(e))
}

func (d *Dispatcher) Midi(note uint8, down bool) bool {
	return d.handle(FromMidi(note, down))
}

func (d *Dispatcher) Raw(e RawEvent) (bool, error) {
	ev, err := FromRaw(e)
	if err != nil {
		return false, err
	}
	return d.handle(ev), nil
}
