package job

import (
	"gdl/enums"
	"gdl/util"
)

// Outcome is how a job ended: normally, through a control signal or
// with an error. Code accumulates the exit bits of the job and all of
// its children.
type Outcome struct {
	Status enums.OutcomeStatus
	Signal *util.Signal
	Err    error
	Code   int
}

func (o Outcome) ExitCode() int {
	return o.Code
}

func (o Outcome) OK() bool {
	return o.Status != enums.OutcomeStatusError && o.Code == 0
}

// Terminated reports whether the whole run has to stop.
func (o Outcome) Terminated() bool {
	return o.Signal != nil && o.Signal.Kind == enums.SignalKindTerminate
}

func outcomeFor(err error, code int) Outcome {
	if err == nil {
		return Outcome{Status: enums.OutcomeStatusOK, Code: code}
	}
	if signal, ok := util.AsSignal(err); ok {
		return Outcome{Status: enums.OutcomeStatusSignal, Signal: signal, Code: code}
	}
	return Outcome{
		Status: enums.OutcomeStatusError,
		Err:    err,
		Code:   code | util.ExitCode(err),
	}
}
