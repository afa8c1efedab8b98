package ui

import (
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
)

const (
	pulseEmpty = "◯"
	pulseFull  = "◉"

	pulseFPS              = ticksPerSecond
	pulseAngularFrequency = 8.0
	pulseDampingRatio     = 0.7

	// ◯ -- ◉ ---- : one beat per received event, otherwise a slow idle beat
	pulseBeatTicks = 2
	pulseIdleTicks = 15

	pulseFrameThreshold = 0.3
)

// Pulse is the live indicator: a spring-driven dot that beats while connected
// and once more for every received event
type Pulse struct {
	spring    harmonica.Spring
	position  float64
	velocity  float64
	target    float64
	active    bool
	tickCount int
	beating   int
}

// NewPulse creates an inactive pulse
func NewPulse() *Pulse {
	return &Pulse{
		spring: harmonica.NewSpring(harmonica.FPS(pulseFPS), pulseAngularFrequency, pulseDampingRatio),
	}
}

// Start begins the idle heartbeat
func (p *Pulse) Start() {
	p.active = true
}

// Stop ends the animation and resets to empty
func (p *Pulse) Stop() {
	p.active = false
	p.position = 0
	p.velocity = 0
	p.target = 0
	p.tickCount = 0
	p.beating = 0
}

// Beat triggers an immediate beat
func (p *Pulse) Beat() {
	if !p.active {
		return
	}

	p.beating = pulseBeatTicks
	p.tickCount = 0
}

// Update advances the animation by one UI tick
func (p *Pulse) Update() {
	if !p.active {
		return
	}

	p.tickCount++

	switch {
	case p.beating > 0:
		p.target = 1
		p.beating--
	case p.tickCount >= pulseIdleTicks:
		p.tickCount = 0
		p.beating = pulseBeatTicks
		p.target = 0
	default:
		p.target = 0
	}

	p.position, p.velocity = p.spring.Update(p.position, p.velocity, p.target)
}

// Frame returns the current glyph
func (p *Pulse) Frame() string {
	if !p.active || p.position < pulseFrameThreshold {
		return pulseEmpty
	}

	return pulseFull
}

// Render returns the styled glyph
func (p *Pulse) Render(style lipgloss.Style) string {
	return style.Render(p.Frame())
}

// IsActive reports whether the pulse is running
func (p *Pulse) IsActive() bool {
	return p.active
}
