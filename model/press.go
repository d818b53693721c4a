package model

import "fmt"

type PressKind uint8

const (
	KeyPress PressKind = iota + 1
	PointerPress
	MidiPress
)

// PressID identifies the physical source of a gesture. Two ids are the same
// press iff they compare equal with ==. The zero value means "no press".
type PressID struct {
	Kind PressKind
	Name string
	Num  int
}

func Key(name string) PressID {
	return PressID{Kind: KeyPress, Name: name}
}

func Pointer(id int) PressID {
	return PressID{Kind: PointerPress, Num: id}
}

func MidiKey(note uint8) PressID {
	return PressID{Kind: MidiPress, Num: int(note)}
}

func (p PressID) IsZero() bool {
	return p == PressID{}
}

func (p PressID) String() string {
	switch p.Kind {
	case KeyPress:
		return "key:" + p.Name
	case PointerPress:
		return fmt.Sprintf("pointer:%d", p.Num)
	case MidiPress:
		return fmt.Sprintf("midi:%d", p.Num)
	}
	return "none"
}

type Phase uint8

const (
	Down Phase = iota
	Up
)

// PressEvent is a normalized gesture edge.
type PressEvent struct {
	ID       PressID
	Phase    Phase
	IsRepeat bool
	// Label is the key name for keyboard presses; it feeds the non-musical
	// key filter.
	Label string
}
