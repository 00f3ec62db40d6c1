// Package announce decides when detections are worth speaking and hands the
// resulting phrases to a speech sink.
package announce

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/ironsheep/sightline/internal/detection"
)

// DefaultCooldown is the minimum time between detection announcements.
const DefaultCooldown = 4 * time.Second

// Reason explains a gate decision.
type Reason string

const (
	ReasonEmpty         Reason = "empty"
	ReasonCooldown      Reason = "cooldown"
	ReasonUnchanged     Reason = "unchanged"
	ReasonFirst         Reason = "first"
	ReasonCountChanged  Reason = "count changed"
	ReasonPositionMoved Reason = "position changed"
	ReasonLabelChanged  Reason = "label changed"
)

// Decision is the outcome of offering a frame to the gate.
type Decision struct {
	Announce bool   `json:"announce"`
	Reason   Reason `json:"reason"`
}

// Gate suppresses repeated announcements of the same scene.
//
// Its state is the last announced detection set and the time it was
// announced. State changes only on Commit, so a change that arrives during
// the cooldown is announced once the cooldown has passed, and a scene that
// was never actually spoken is offered again.
type Gate struct {
	clock    clock.Clock
	cooldown time.Duration

	mu       sync.Mutex
	previous []detection.Detection
	last     time.Time
}

// NewGate returns a gate that has announced nothing yet. A nil clock uses the
// wall clock.
func NewGate(cooldown time.Duration, clk clock.Clock) *Gate {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Gate{clock: clk, cooldown: cooldown}
}

// Check reports whether dets should be announced without recording them.
// Callers that go on to speak the scene must Commit it.
func (g *Gate) Check(dets []detection.Detection) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(dets) == 0 {
		return Decision{Reason: ReasonEmpty}
	}
	if !g.last.IsZero() && g.clock.Now().Sub(g.last) < g.cooldown {
		return Decision{Reason: ReasonCooldown}
	}

	reason := changed(g.previous, dets)
	if reason == "" {
		return Decision{Reason: ReasonUnchanged}
	}
	return Decision{Announce: true, Reason: reason}
}

// Commit records dets as the last announced scene and restarts the cooldown.
func (g *Gate) Commit(dets []detection.Detection) {
	g.mu.Lock()
	g.previous = append(g.previous[:0:0], dets...)
	g.last = g.clock.Now()
	g.mu.Unlock()
}

// Offer reports whether dets should be announced, recording them if so.
func (g *Gate) Offer(dets []detection.Detection) Decision {
	d := g.Check(dets)
	if d.Announce {
		g.Commit(dets)
	}
	return d
}

// Reset forgets the announcement history.
func (g *Gate) Reset() {
	g.mu.Lock()
	g.previous = nil
	g.last = time.Time{}
	g.mu.Unlock()
}

// changed compares the new set with the previous one. Position changes are
// checked before label changes.
func changed(prev, next []detection.Detection) Reason {
	switch {
	case len(prev) == 0:
		return ReasonFirst
	case len(prev) != len(next):
		return ReasonCountChanged
	}
	for i := range next {
		if next[i].Position() != prev[i].Position() {
			return ReasonPositionMoved
		}
	}
	for i := range next {
		if next[i].Label() != prev[i].Label() {
			return ReasonLabelChanged
		}
	}
	return ""
}
