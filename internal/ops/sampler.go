package ops

import "github.com/soir-live/soir/internal/registry"

// Sampler is the sampler.* surface: play/stop a handle obtained from
// registry.SamplerRegistry.NewSampler. Legal only inside a loop body.
type Sampler struct {
	ops *Ops
}

// Play schedules a sample trigger. params keys are parameter names; values
// are either floats or control-name strings the audio side resolves live
// (spec.md §6).
func (s *Sampler) Play(sampler *registry.Sampler, params map[string]any) error {
	o := s.ops
	l := o.loop()
	if l == nil {
		return newNotInLoopError("sampler.play")
	}
	due := o.clock.Beat().Add(l.CurrentOffset())
	o.scheduler.Schedule(due, func() { o.hostImpl.SamplePlay(sampler.Track, params) })
	return nil
}

// Stop schedules a sample stop.
func (s *Sampler) Stop(sampler *registry.Sampler, params map[string]any) error {
	o := s.ops
	l := o.loop()
	if l == nil {
		return newNotInLoopError("sampler.stop")
	}
	due := o.clock.Beat().Add(l.CurrentOffset())
	o.scheduler.Schedule(due, func() { o.hostImpl.SampleStop(sampler.Track, params) })
	return nil
}
