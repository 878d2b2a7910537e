package viewstate

import (
	"errors"
	"fmt"

	"versefinder/internal/bibleapi"
	"versefinder/internal/model"
)

// Phase is the mutually exclusive stage of a lookup.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// State is a snapshot of what the screen should show. Record is set only
// in PhaseSuccess and Message only in PhaseFailed.
type State struct {
	Phase   Phase
	Record  *model.VerseRecord
	Message string
	Passage string // query that produced this state; empty while idle
	Seq     uint64 // request that produced this state; 0 while idle
}

// Verse returns the fetched record, or nil.
func (s State) Verse() *model.VerseRecord { return s.Record }

// Loading reports whether a lookup is in flight.
func (s State) Loading() bool { return s.Phase == PhaseLoading }

// ErrorMessage returns the failure text, or "" when not failed.
func (s State) ErrorMessage() string { return s.Message }

// Describe turns a lookup failure into text for the user.
func Describe(err error) string {
	if err == nil {
		return "unknown error"
	}
	var te *bibleapi.TransportError
	if errors.As(err, &te) {
		return te.Message()
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "unknown error"
}
