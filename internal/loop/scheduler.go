// Package loop implements the fixed-timestep frame scheduler.
//
// Each idle tick from the host measures the wall time since the previous
// tick. The scheduler clamps it to a maximum frame time and banks it in an
// accumulator. The accumulator is then spent in fixed-size update steps. Every
// update step is followed by one render that receives a blending factor in
// [0, 1), used to interpolate between the last two simulation states.
// See https://gafferongames.com/post/fix_your_timestep.
package loop

import (
	"strconv"
	"time"
)

// Signal tells the host what to do after a tick.
type Signal int

const (
	// Continue keeps delivering events and ticks.
	Continue Signal = iota
	// Exit stops the loop; the application asked for it.
	Exit
	// Failed stops the loop; an application callback returned an error.
	Failed
)

func (s Signal) String() string {
	switch s {
	case Continue:
		return "continue"
	case Exit:
		return "exit"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Hooks is the callback set driven by Advance.
type Hooks interface {
	// Update runs one fixed simulation step. Returning exit=true stops the
	// tick before decay and render.
	Update(step time.Duration) (exit bool, err error)
	// Decay commits input edges. Called once per tick, after the first update.
	Decay()
	// Render draws the current state with the given blending factor.
	Render(blend float64) error
}

// Stats counts scheduler activity since construction.
type Stats struct {
	Ticks        int64
	Updates      int64
	Renders      int64
	ClampedTicks int64
}

// Scheduler owns the fixed-timestep clock.
// It is driven from a single goroutine and is not safe for concurrent use.
type Scheduler struct {
	targetStep   time.Duration
	maxFrameTime time.Duration
	accumulated  time.Duration
	last         time.Time
	stats        Stats
}

// NewScheduler creates a scheduler whose first tick measures from now.
// Both durations must be positive.
func NewScheduler(targetStep, maxFrameTime time.Duration, now time.Time) (*Scheduler, error) {
	if err := checkPositive("target step", targetStep); err != nil {
		return nil, err
	}
	if err := checkPositive("max frame time", maxFrameTime); err != nil {
		return nil, err
	}
	return &Scheduler{
		targetStep:   targetStep,
		maxFrameTime: maxFrameTime,
		last:         now,
	}, nil
}

// StepForFPS converts an update rate to a step duration.
func StepForFPS(fps int) (time.Duration, error) {
	if fps <= 0 {
		return 0, &ConfigError{Field: "target fps", Value: strconv.Itoa(fps)}
	}
	return time.Second / time.Duration(fps), nil
}

// TargetStep returns the fixed update step.
func (s *Scheduler) TargetStep() time.Duration {
	return s.targetStep
}

// SetTargetStep changes the fixed update step from the next Advance on.
func (s *Scheduler) SetTargetStep(d time.Duration) error {
	if err := checkPositive("target step", d); err != nil {
		return err
	}
	s.targetStep = d
	return nil
}

// SetTargetFPS is SetTargetStep expressed as an update rate.
func (s *Scheduler) SetTargetFPS(fps int) error {
	d, err := StepForFPS(fps)
	if err != nil {
		return err
	}
	s.targetStep = d
	return nil
}

// MaxFrameTime returns the ceiling applied to a single measured interval.
func (s *Scheduler) MaxFrameTime() time.Duration {
	return s.maxFrameTime
}

// SetMaxFrameTime changes the frame time ceiling from the next Advance on.
func (s *Scheduler) SetMaxFrameTime(d time.Duration) error {
	if err := checkPositive("max frame time", d); err != nil {
		return err
	}
	s.maxFrameTime = d
	return nil
}

// Accumulated returns the banked time not yet spent on update steps.
func (s *Scheduler) Accumulated() time.Duration {
	return s.accumulated
}

// Stats returns the activity counters.
func (s *Scheduler) Stats() Stats {
	return s.stats
}

// Reset re-anchors the clock at now, so time spent while the host was
// suspended is not measured. The accumulator is kept.
func (s *Scheduler) Reset(now time.Time) {
	s.last = now
}

// Advance runs one idle tick at instant now.
//
// It returns (Exit, nil) when an update asked to exit, (Failed, err) when a
// callback failed, and (Continue, nil) otherwise. A tick that runs no update
// renders nothing.
func (s *Scheduler) Advance(now time.Time, h Hooks) (Signal, error) {
	// Setters called from inside this tick's updates apply to the next tick.
	step := s.targetStep
	limit := s.maxFrameTime

	elapsed := now.Sub(s.last)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > limit {
		elapsed = limit
		s.stats.ClampedTicks++
	}
	s.last = now
	s.accumulated += elapsed
	s.stats.Ticks++

	if s.accumulated < step {
		return Continue, nil
	}

	// Every render of the tick sees the state the tick will end in.
	remainder := s.accumulated % step
	blend := float64(remainder) / float64(step)

	decayed := false
	// An exact multiple is consumed in full so the blend stays below 1.
	for s.accumulated >= step {
		exit, err := h.Update(step)
		s.stats.Updates++
		if err != nil {
			return Failed, err
		}
		if exit {
			return Exit, nil
		}

		if !decayed {
			h.Decay()
			decayed = true
		}

		s.accumulated -= step
		if s.accumulated < 0 {
			s.accumulated = 0
		}

		s.stats.Renders++
		if err := h.Render(blend); err != nil {
			return Failed, err
		}
	}

	return Continue, nil
}
