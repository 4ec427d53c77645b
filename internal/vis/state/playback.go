package state

import "time"

// PlaybackState manages trajectory playback timing.
type PlaybackState struct {
	CurrentTime float64 // Plan time shown
	MaxTime     float64 // Last time anything moves
	Speed       float64 // Plan time units per wall-clock second
	Step        float64 // Plan time per single step
	Playing     bool
	lastUpdate  time.Time
}

// NewPlaybackState creates a paused playback over [0, maxTime].
func NewPlaybackState(maxTime float64) *PlaybackState {
	step := maxTime / 100
	if step < 0.05 {
		step = 0.05
	}
	return &PlaybackState{
		MaxTime:    maxTime,
		Speed:      1.0,
		Step:       step,
		lastUpdate: time.Now(),
	}
}

// TogglePlay toggles playback, rewinding first when at the end.
func (p *PlaybackState) TogglePlay() {
	p.Playing = !p.Playing
	if p.Playing {
		p.lastUpdate = time.Now()
		if p.CurrentTime >= p.MaxTime {
			p.CurrentTime = 0
		}
	}
}

// Pause stops playback.
func (p *PlaybackState) Pause() {
	p.Playing = false
}

// Reset rewinds to time 0 and pauses.
func (p *PlaybackState) Reset() {
	p.CurrentTime = 0
	p.Playing = false
}

// Advance moves playback forward by the wall-clock time since the last update.
func (p *PlaybackState) Advance() {
	p.AdvanceTo(time.Now())
}

// AdvanceTo moves playback forward to the wall-clock instant now.
func (p *PlaybackState) AdvanceTo(now time.Time) {
	if !p.Playing {
		return
	}
	elapsed := now.Sub(p.lastUpdate).Seconds()
	p.lastUpdate = now

	p.CurrentTime += elapsed * p.Speed
	if p.CurrentTime >= p.MaxTime {
		p.CurrentTime = p.MaxTime
		p.Playing = false
	}
}

// SetTime jumps to t, clamped to [0, MaxTime].
func (p *PlaybackState) SetTime(t float64) {
	p.CurrentTime = max(0, min(p.MaxTime, t))
}

// StepForward pauses and advances one step.
func (p *PlaybackState) StepForward() {
	p.Pause()
	p.SetTime(p.CurrentTime + p.Step)
}

// StepBack pauses and goes back one step.
func (p *PlaybackState) StepBack() {
	p.Pause()
	p.SetTime(p.CurrentTime - p.Step)
}

// SetSpeed sets the playback speed, clamped to [0.1, 20].
func (p *PlaybackState) SetSpeed(speed float64) {
	p.Speed = max(0.1, min(20, speed))
}

// Progress returns the current position as a fraction of MaxTime.
func (p *PlaybackState) Progress() float64 {
	if p.MaxTime <= 0 {
		return 0
	}
	return p.CurrentTime / p.MaxTime
}
