package executor

import "dailyflow/internal/routine"

// Listener receives step-by-step progress while a routine executes. Callbacks
// fire on the executor's worker goroutine, strictly in step order.
type Listener interface {
	OnStepStart(index int, action routine.Action)
	OnStepDone(index int, action routine.Action)
	OnStepError(index int, action routine.Action, err error)
	OnStepSkipped(index int, action routine.Action)
	OnRoutineDone(r routine.Routine)
}

// NopListener discards all progress callbacks.
type NopListener struct{}

func (NopListener) OnStepStart(int, routine.Action)        {}
func (NopListener) OnStepDone(int, routine.Action)         {}
func (NopListener) OnStepError(int, routine.Action, error) {}
func (NopListener) OnStepSkipped(int, routine.Action)      {}
func (NopListener) OnRoutineDone(routine.Routine)          {}

type multiListener []Listener

func (m multiListener) OnStepStart(i int, a routine.Action) {
	for _, l := range m {
		l.OnStepStart(i, a)
	}
}

func (m multiListener) OnStepDone(i int, a routine.Action) {
	for _, l := range m {
		l.OnStepDone(i, a)
	}
}

func (m multiListener) OnStepError(i int, a routine.Action, err error) {
	for _, l := range m {
		l.OnStepError(i, a, err)
	}
}

func (m multiListener) OnStepSkipped(i int, a routine.Action) {
	for _, l := range m {
		l.OnStepSkipped(i, a)
	}
}

func (m multiListener) OnRoutineDone(r routine.Routine) {
	for _, l := range m {
		l.OnRoutineDone(r)
	}
}

// CombineListeners fans progress callbacks out to several listeners in order.
func CombineListeners(listeners ...Listener) Listener {
	out := make(multiListener, 0, len(listeners))
	for _, l := range listeners {
		if l != nil {
			out = append(out, l)
		}
	}
	return out
}
