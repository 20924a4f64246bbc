package collector

import "sync"

// RollingAverage is an accumulator reporting the mean of observed values
// together with the number of observations backing it.
type RollingAverage struct {
	mu    sync.Mutex
	id    string
	sum   float64
	count int64
}

// NewRollingAverage creates an empty rolling average reported under id.
func NewRollingAverage(id string) *RollingAverage {

	return &RollingAverage{id: id}
}

// Observe adds one value to the average.
func (r *RollingAverage) Observe(value float64) {

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sum += value
	r.count++
}

// ID returns the metric identifier the aggregate is reported under.
func (r *RollingAverage) ID() string {

	return r.id
}

// Aggregate returns the current mean and observation count, then resets the
// accumulator for the next interval. With no observations it reports zero
// with weight zero.
func (r *RollingAverage) Aggregate() (float64, int64, error) {

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.count == 0 {
		return 0, 0, nil
	}
	value := r.sum / float64(r.count)
	count := r.count
	r.sum, r.count = 0, 0
	return value, count, nil
}
