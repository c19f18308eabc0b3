package service

import "fmt"

// Dispatcher picks the strategy for a request's mode.
type Dispatcher struct {
	strategies map[Mode]Strategy
}

func NewDispatcher(strategies ...Strategy) *Dispatcher {
	d := &Dispatcher{strategies: make(map[Mode]Strategy, len(strategies))}
	for _, s := range strategies {
		d.strategies[s.Mode()] = s
	}
	return d
}

// Select parses raw and returns its strategy. Unknown names are a
// validation error.
func (d *Dispatcher) Select(raw string) (Strategy, error) {
	m, err := ParseMode(raw)
	if err != nil {
		return nil, err
	}
	return d.Strategy(m)
}

// Strategy returns the strategy registered for m.
func (d *Dispatcher) Strategy(m Mode) (Strategy, error) {
	s, ok := d.strategies[m]
	if !ok {
		return nil, fmt.Errorf("%w: no strategy for mode %s", ErrConfiguration, m)
	}
	return s, nil
}
