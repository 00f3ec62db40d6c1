package announce

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// DefaultUtteranceCooldown is the minimum time between ordinary utterances.
const DefaultUtteranceCooldown = 2 * time.Second

// Sink is the external text-to-speech engine. Speak must not block until
// playback finishes; Stop cuts off whatever is playing.
type Sink interface {
	Speak(ctx context.Context, text string) error
	Stop(ctx context.Context) error
}

// Speaker is the utterance layer between the announcement gate and the
// speech sink. Ordinary utterances respect a short cooldown of their own;
// events bypass it and interrupt in-flight speech.
type Speaker struct {
	sink     Sink
	clock    clock.Clock
	cooldown time.Duration
	logger   *zap.SugaredLogger

	mu    sync.Mutex
	last  time.Time
	muted bool
}

// NewSpeaker wraps sink. Nil clock and logger get defaults.
func NewSpeaker(sink Sink, cooldown time.Duration, clk clock.Clock, logger *zap.SugaredLogger) *Speaker {
	if cooldown <= 0 {
		cooldown = DefaultUtteranceCooldown
	}
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Speaker{sink: sink, clock: clk, cooldown: cooldown, logger: logger}
}

// Announce speaks text unless the utterance cooldown is running. With
// bypassCooldown the cooldown is ignored. It reports whether text was handed
// to the sink.
func (s *Speaker) Announce(ctx context.Context, text string, bypassCooldown bool) bool {
	s.mu.Lock()
	if s.muted || text == "" {
		s.mu.Unlock()
		return false
	}
	now := s.clock.Now()
	if !bypassCooldown && !s.last.IsZero() && now.Sub(s.last) < s.cooldown {
		s.mu.Unlock()
		s.logger.Debugw("Utterance suppressed by cooldown", "text", text)
		return false
	}
	s.last = now
	s.mu.Unlock()

	if err := s.sink.Speak(ctx, text); err != nil {
		s.logger.Warnw("Speech sink failed", "text", text, "err", err)
		return false
	}
	return true
}

// Event speaks a discrete state change immediately: it bypasses every
// cooldown, interrupts in-flight speech, and is spoken even while muted
// so the user hears mute being toggled.
func (s *Speaker) Event(ctx context.Context, text string) bool {
	if err := s.sink.Stop(ctx); err != nil {
		s.logger.Debugw("Speech sink stop failed", "err", err)
	}

	s.mu.Lock()
	s.last = s.clock.Now()
	s.mu.Unlock()

	if err := s.sink.Speak(ctx, text); err != nil {
		s.logger.Warnw("Speech sink failed", "text", text, "err", err)
		return false
	}
	return true
}

// SetMuted silences ordinary announcements.
func (s *Speaker) SetMuted(muted bool) {
	s.mu.Lock()
	s.muted = muted
	s.mu.Unlock()
}

// Muted reports whether ordinary announcements are silenced.
func (s *Speaker) Muted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted
}
