package studio

import (
	"strings"
	"time"

	"wrapstudio/internal/domain"
	"wrapstudio/internal/imagegen"
	"wrapstudio/internal/prompt"
)

// Phase is the state of a studio's generation request.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRequesting
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseRequesting:
		return "requesting"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Result is the outcome of a successful generation.
type Result struct {
	Image       imagegen.Image
	Prompt      string
	CompletedAt time.Time
}

// Lifecycle holds the phase together with the data that only exists in a
// given phase: the result when Succeeded and the message when Failed.
type Lifecycle struct {
	phase   Phase
	result  *Result
	message string
	seq     uint64
}

func (l Lifecycle) Phase() Phase { return l.phase }

// Result returns the generated image; ok is false unless the phase is Succeeded.
func (l Lifecycle) Result() (Result, bool) {
	if l.phase != PhaseSucceeded || l.result == nil {
		return Result{}, false
	}
	return *l.result, true
}

// Message returns the failure message; ok is false unless the phase is Failed.
func (l Lifecycle) Message() (string, bool) {
	if l.phase != PhaseFailed {
		return "", false
	}
	return l.message, true
}

func (l *Lifecycle) begin() uint64 {
	l.seq++
	l.phase = PhaseRequesting
	l.result = nil
	l.message = ""
	return l.seq
}

// resolve moves a Requesting lifecycle to its terminal phase. Stale tickets
// (from before a reset or an earlier request) are ignored.
func (l *Lifecycle) resolve(seq uint64, res Result, err error) bool {
	if l.phase != PhaseRequesting || seq != l.seq {
		return false
	}
	switch {
	case err != nil:
		msg := strings.TrimSpace(err.Error())
		if msg == "" {
			msg = domain.UnknownErrorMessage
		}
		l.phase, l.message = PhaseFailed, msg
	case res.Image.IsEmpty():
		l.phase, l.message = PhaseFailed, domain.EmptyResultMessage
	default:
		l.phase, l.result = PhaseSucceeded, &res
	}
	return true
}

func (l *Lifecycle) reset() {
	l.seq++
	l.phase = PhaseIdle
	l.result = nil
	l.message = ""
}

// Ticket is an accepted generation trigger. It freezes the selection the
// request was made with; later edits to the studio do not affect it.
type Ticket struct {
	StudioID  string
	Input     prompt.Input
	Logo      *Logo
	StartedAt time.Time
	seq       uint64
}
