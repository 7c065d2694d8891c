package store

import "github.com/ds124wfegd/negative-web/internal/entity"

// Slot names a request stream whose responses are sequenced independently.
type Slot int

const (
	SlotService1 Slot = iota
	SlotService2
	SlotNegative
	slotCount
)

func SlotFor(endpoint entity.Endpoint) Slot {
	if endpoint == entity.Service2 {
		return SlotService2
	}
	return SlotService1
}

// State is an immutable snapshot. Reduce never mutates its input; pointers
// held by a snapshot (selected file, artifact) are treated as read-only.
type State struct {
	entity.UIState
	generations [slotCount]uint64
}

// Generation is the token of the most recent request started on slot.
func (s State) Generation(slot Slot) uint64 {
	return s.generations[slot]
}

type Action interface {
	action()
}

type SetInput struct{ Text string }

type SelectFile struct{ File *entity.SelectedFile }

type EchoStarted struct{ Endpoint entity.Endpoint }

type EchoSucceeded struct {
	Endpoint   entity.Endpoint
	Generation uint64
	Message    string
}

type EchoFailed struct {
	Endpoint   entity.Endpoint
	Generation uint64
}

type NegativeRejected struct{ Message string }

type NegativeStarted struct{}

type NegativeSucceeded struct {
	Generation uint64
	Artifact   *entity.Artifact
}

type NegativeFailed struct {
	Generation uint64
	Message    string
}

// Reset drops all view state and invalidates every in-flight request.
type Reset struct{}

func (SetInput) action()          {}
func (SelectFile) action()        {}
func (EchoStarted) action()       {}
func (EchoSucceeded) action()     {}
func (EchoFailed) action()        {}
func (NegativeRejected) action()  {}
func (NegativeStarted) action()   {}
func (NegativeSucceeded) action() {}
func (NegativeFailed) action()    {}
func (Reset) action()             {}

// Reduce returns the state produced by applying a to s and whether a was
// applied. Completions carrying a stale generation are ignored.
func Reduce(s State, a Action) (State, bool) {
	switch a := a.(type) {
	case SetInput:
		s.InputText = a.Text

	case SelectFile:
		s.SelectedFile = a.File
		s.Download = nil
		s.ErrorMessage = ""

	case EchoStarted:
		s.generations[SlotFor(a.Endpoint)]++

	case EchoSucceeded:
		if s.generations[SlotFor(a.Endpoint)] != a.Generation {
			return s, false
		}
		s = setResponse(s, a.Endpoint, a.Message)

	case EchoFailed:
		if s.generations[SlotFor(a.Endpoint)] != a.Generation {
			return s, false
		}
		s = setResponse(s, a.Endpoint, entity.EchoFailureMessage)

	case NegativeRejected:
		s.ErrorMessage = a.Message
		s.Download = nil

	case NegativeStarted:
		s.generations[SlotNegative]++
		s.Processing = true
		s.ErrorMessage = ""
		s.Download = nil

	case NegativeSucceeded:
		if s.generations[SlotNegative] != a.Generation {
			return s, false
		}
		s.Processing = false
		s.ErrorMessage = ""
		s.Download = a.Artifact

	case NegativeFailed:
		if s.generations[SlotNegative] != a.Generation {
			return s, false
		}
		s.Processing = false
		s.ErrorMessage = a.Message
		s.Download = nil

	case Reset:
		next := State{generations: s.generations}
		for i := range next.generations {
			next.generations[i]++
		}
		return next, true

	default:
		return s, false
	}
	return s, true
}

func setResponse(s State, endpoint entity.Endpoint, text string) State {
	if endpoint == entity.Service2 {
		s.Service2Response = text
	} else {
		s.Service1Response = text
	}
	return s
}
