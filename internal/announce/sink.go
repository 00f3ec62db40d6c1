package announce

import (
	"context"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// LogSink writes utterances to a logger instead of a speech engine.
type LogSink struct {
	Logger *zap.SugaredLogger
}

// Speak logs the utterance.
func (s LogSink) Speak(_ context.Context, text string) error {
	s.Logger.Infow("Speak", "text", text)
	return nil
}

// Stop logs the interruption.
func (s LogSink) Stop(context.Context) error {
	s.Logger.Debugw("Stop speaking")
	return nil
}

// MultiSink hands every utterance to each of its sinks in order. A failing
// sink does not stop the others; the errors are combined.
type MultiSink []Sink

// Speak speaks text on every sink.
func (m MultiSink) Speak(ctx context.Context, text string) error {
	var errs error
	for _, s := range m {
		errs = multierr.Append(errs, s.Speak(ctx, text))
	}
	return errs
}

// Stop stops every sink.
func (m MultiSink) Stop(ctx context.Context) error {
	var errs error
	for _, s := range m {
		errs = multierr.Append(errs, s.Stop(ctx))
	}
	return errs
}

// Recorder is a Sink that remembers everything it was asked to say.
type Recorder struct {
	mu     sync.Mutex
	spoken []string
	stops  int
}

// Speak records text.
func (r *Recorder) Speak(_ context.Context, text string) error {
	r.mu.Lock()
	r.spoken = append(r.spoken, text)
	r.mu.Unlock()
	return nil
}

// Stop counts the interruption.
func (r *Recorder) Stop(context.Context) error {
	r.mu.Lock()
	r.stops++
	r.mu.Unlock()
	return nil
}

// Spoken returns a copy of the recorded utterances.
func (r *Recorder) Spoken() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.spoken...)
}

// Stops returns how many times speech was interrupted.
func (r *Recorder) Stops() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stops
}
