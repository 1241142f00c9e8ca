package procs

// Proc is one state of a state machine. Run returns the next state, or nil
// when the machine is done.
type Proc[C any] interface {
	Run(ctx C) (Proc[C], error)
}

type Func[C any] func(ctx C) (Proc[C], error)

var _ Proc[any] = Func[any](nil)

func (f Func[C]) Run(ctx C) (Proc[C], error) {
	return f(ctx)
}

// Drive runs proc until it returns nil. before is called ahead of each
// state and may stop the machine by returning an error.
func Drive[C any](ctx C, proc Proc[C], before func(Proc[C]) error) error {
	for proc != nil {
		if before != nil {
			if err := before(proc); err != nil {
				return err
			}
		}
		next, err := proc.Run(ctx)
		if err != nil {
			return err
		}
		proc = next
	}
	return nil
}
