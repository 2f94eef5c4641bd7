package curator

import "time"

// Default mitigation configuration constants.
const (
	defaultWriterWeight    = 10.0
	defaultProjectWeight   = 5.0
	defaultRecencyWeight   = 1.0
	defaultRecencyFullDays = 10.0
	defaultRecencyZeroDays = 90.0
)

// Weights sets the contribution of each mitigation factor to M.
type Weights struct {
	Writers  float64 // D1
	Projects float64 // D2
	Recency  float64 // D3
}

// DefaultWeights returns the platform weights: writer diversity dominates,
// project diversity is secondary and recency breaks ties.
func DefaultWeights() Weights {
	return Weights{
		Writers:  defaultWriterWeight,
		Projects: defaultProjectWeight,
		Recency:  defaultRecencyWeight,
	}
}

func (w Weights) total() float64 { return w.Writers + w.Projects + w.Recency }

type settings struct {
	clock    func() time.Time
	weights  Weights
	fullDays float64
	zeroDays float64
}

func newSettings(opts []Option) settings {
	s := settings{
		clock:    time.Now,
		weights:  DefaultWeights(),
		fullDays: defaultRecencyFullDays,
		zeroDays: defaultRecencyZeroDays,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Option applies a configuration option to a computation.
type Option func(*settings)

// WithNow pins the reference time used for recency.
func WithNow(now time.Time) Option {
	return func(s *settings) {
		if !now.IsZero() {
			s.clock = func() time.Time { return now }
		}
	}
}

// WithClock sets the clock used for recency.
func WithClock(clock func() time.Time) Option {
	return func(s *settings) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithWeights overrides the mitigation weights. Negative weights or an
// all-zero set are ignored.
func WithWeights(w Weights) Option {
	return func(s *settings) {
		if w.Writers >= 0 && w.Projects >= 0 && w.Recency >= 0 && w.total() > 0 {
			s.weights = w
		}
	}
}

// WithRecencyWindow sets the day counts at which recency starts decaying and
// reaches its floor. Ignored unless 0 <= fullDays < zeroDays.
func WithRecencyWindow(fullDays, zeroDays float64) Option {
	return func(s *settings) {
		if fullDays >= 0 && zeroDays > fullDays {
			s.fullDays = fullDays
			s.zeroDays = zeroDays
		}
	}
}
