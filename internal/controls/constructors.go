package controls

import "sync/atomic"

// NewLFO builds an LFO control. rate is in Hz, intensity in [0,1], low/high
// bound the oscillation range.
func NewLFO(name string, scope Scope, rate, intensity, low, high float64) *Control {
	return &Control{
		name: name, kind: KindLFO, scope: scope,
		lfoRate: rate, lfoIntensity: intensity, lfoLow: low, lfoHigh: high,
	}
}

// NewLinear builds a Linear control ramping from start to end over duration
// seconds. Values past duration are unclamped (spec.md §4.3/§9).
func NewLinear(name string, scope Scope, start, end, duration float64) *Control {
	return &Control{
		name: name, kind: KindLinear, scope: scope,
		linStart: start, linEnd: end, linDuration: duration,
	}
}

// NewVal builds a constant-valued control whose value only changes via Set.
func NewVal(name string, scope Scope, value float64) *Control {
	return &Control{
		name: name, kind: KindVal, scope: scope,
		value: value,
	}
}

// NewFunc builds a control whose value is recomputed from fn on every Fwd.
func NewFunc(name string, scope Scope, fn func() float64) *Control {
	return &Control{
		name: name, kind: KindFunc, scope: scope,
		fn: fn,
	}
}

// bindUpdateLoopFlag wires the shared "inside update loop" flag into ctrl.
// Called by Registry.Declare so every control's Fwd observes the same flag.
func bindUpdateLoopFlag(ctrl *Control, flag *atomic.Bool) {
	ctrl.insideUpdateLoop = flag
}
