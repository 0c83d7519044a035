package util

import (
	"gdl/enums"

	"github.com/pkg/errors"
)

// Signal alters job execution. It travels on the error channel of a
// producer but is never reported as a failure.
type Signal struct {
	Kind   enums.SignalKind
	Reason string
}

func (s *Signal) Error() string {
	if s.Reason == "" {
		return string(s.Kind)
	}
	return string(s.Kind) + ": " + s.Reason
}

func Stop(reason string) *Signal {
	return &Signal{Kind: enums.SignalKindStop, Reason: reason}
}

func Abort(reason string) *Signal {
	return &Signal{Kind: enums.SignalKindAbort, Reason: reason}
}

func Terminate(reason string) *Signal {
	return &Signal{Kind: enums.SignalKindTerminate, Reason: reason}
}

func Restart(reason string) *Signal {
	return &Signal{Kind: enums.SignalKindRestart, Reason: reason}
}

func AsSignal(err error) (*Signal, bool) {
	var s *Signal
	if errors.As(err, &s) {
		return s, true
	}
	return nil, false
}
