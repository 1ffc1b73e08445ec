package geometry

import "math"

// Defaults for geometry construction (single source of truth).
const (
	// DefaultEpsilon is the target regularization strength used when no
	// WithEpsilon option is supplied.
	DefaultEpsilon = 0.05
)

// Panic messages for option constructors (programmer errors).
const (
	panicEpsilonInvalid = "geometry: WithEpsilon: eps must be finite and > 0"
	panicDecayInvalid   = "geometry: WithDecaySchedule: init >= target, 0 < decay <= 1 required"
)

// Option mutates construction options. Constructors panic only on
// nonsensical values (programmer error); data errors surface as sentinels
// from the geometry constructors.
type Option func(*options)

type options struct {
	eps    epsSchedule
	online bool
}

// epsSchedule is a geometric annealing schedule: ε(it) decays from init
// toward target by a constant factor per iteration, never below target.
// The zero value plus a target is the constant schedule.
type epsSchedule struct {
	target float64
	init   float64
	decay  float64
}

// at returns the schedule value at an iteration index. Monotone
// non-increasing, converging to target.
func (s epsSchedule) at(iteration int) float64 {
	if s.init <= s.target || s.decay >= 1 {
		return s.target
	}
	e := s.init * math.Pow(s.decay, float64(iteration))
	return math.Max(e, s.target)
}

func defaultOptions() options {
	return options{eps: epsSchedule{target: DefaultEpsilon, init: DefaultEpsilon, decay: 1}}
}

func gatherOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	// A schedule configured before the target was known inherits it here.
	if o.eps.init < o.eps.target {
		o.eps.init = o.eps.target
	}
	return o
}

// WithEpsilon sets the target regularization strength ε.
// Panics when eps is non-finite or ≤ 0.
func WithEpsilon(eps float64) Option {
	if math.IsNaN(eps) || math.IsInf(eps, 0) || eps <= 0 {
		panic(panicEpsilonInvalid)
	}
	return func(o *options) { o.eps.target = eps }
}

// WithDecaySchedule anneals ε geometrically: ε(it) = max(target, init·decayⁱᵗ).
// Annealing improves conditioning when the target ε is small.
// Panics when init ≤ 0 or decay ∉ (0, 1].
func WithDecaySchedule(init, decay float64) Option {
	if init <= 0 || decay <= 0 || decay > 1 {
		panic(panicDecayInvalid)
	}
	return func(o *options) {
		o.eps.init = init
		o.eps.decay = decay
	}
}

// WithOnline makes a PointCloud geometry recompute cost rows per
// application instead of materializing the n×m matrix. Other variants
// ignore it.
func WithOnline() Option {
	return func(o *options) { o.online = true }
}
