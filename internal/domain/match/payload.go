package match

import (
	"errors"
	"fmt"
)

var ErrUnknownPayload = errors.New("unknown match payload variant")

// Payload is the provider-side match shape. It is either a BasicMatch or a
// LiveMatch; consumers go through Unwrap instead of probing optional fields.
type Payload interface {
	matchPayload()
}

// BasicMatch carries fixture and score data only.
type BasicMatch struct {
	Match Match
}

// LiveMatch carries the match plus the live crease view.
type LiveMatch struct {
	Match Match
	State LiveState
}

func (BasicMatch) matchPayload() {}
func (LiveMatch) matchPayload()  {}

// Unwrap flattens a payload into the stored match shape. The live view is
// attached only for the LiveMatch variant.
func Unwrap(p Payload) (Match, error) {
	switch v := p.(type) {
	case BasicMatch:
		out := v.Match
		out.Live = nil
		return out, nil
	case *BasicMatch:
		if v == nil {
			return Match{}, fmt.Errorf("%w: nil basic match", ErrUnknownPayload)
		}
		return Unwrap(*v)
	case LiveMatch:
		out := v.Match
		state := v.State
		out.Live = &state
		return out, nil
	case *LiveMatch:
		if v == nil {
			return Match{}, fmt.Errorf("%w: nil live match", ErrUnknownPayload)
		}
		return Unwrap(*v)
	default:
		return Match{}, fmt.Errorf("%w: %T", ErrUnknownPayload, p)
	}
}

// Wrap turns a stored match back into a payload variant.
func Wrap(m Match) Payload {
	if m.Live != nil {
		state := *m.Live
		m.Live = nil
		return LiveMatch{Match: m, State: state}
	}
	return BasicMatch{Match: m}
}
