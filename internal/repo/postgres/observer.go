package postgres

// Observer records the latency and outcome of one logical DB operation.
type Observer interface {
	ObserveDB(op string, fn func() error) error
}

type noopObserver struct{}

func (noopObserver) ObserveDB(op string, fn func() error) error {
	return fn()
}

func orNoop(obs Observer) Observer {
	if obs == nil {
		return noopObserver{}
	}
	return obs
}
