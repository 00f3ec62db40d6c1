package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/sightline/internal/announce"
	"github.com/ironsheep/sightline/internal/detection"
	"github.com/ironsheep/sightline/internal/fusion"
	"github.com/ironsheep/sightline/internal/geometry"
	"github.com/ironsheep/sightline/internal/imaging"
)

func box(x, y, w, h float64) *geometry.Rect {
	r := geometry.NewRect(x, y, w, h)
	return &r
}

var dog = detection.Raw{Label: "dog", Confidence: 0.6, Box: box(0.05, 0.4, 0.25, 0.3)}

type harness struct {
	clock    *clock.Mock
	recorder *announce.Recorder
	speaker  *announce.Speaker
	proc     *Processor
}

func newHarness(t *testing.T, opts Options, channels ...fusion.Channel) *harness {
	t.Helper()
	h := &harness{clock: clock.NewMock(), recorder: &announce.Recorder{}}
	h.speaker = announce.NewSpeaker(h.recorder, 2*time.Second, h.clock, nil)

	engine, err := fusion.NewEngine(fusion.DefaultOptions(), nil, channels...)
	require.NoError(t, err)

	opts.Engine = engine
	opts.Announcer = &announce.Announcer{
		Gate:    announce.NewGate(4*time.Second, h.clock),
		Speaker: h.speaker,
	}
	h.proc, err = New(opts)
	require.NoError(t, err)
	return h
}

// leftBlockFrame has a saturated block filling the left third.
func leftBlockFrame() *imaging.Frame {
	f := imaging.NewFrame(120, 80)
	f.FillRect(0, 0, 40, 80, 255, 0, 0)
	return f
}

func TestNew_RequiresEngineAndAnnouncer(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestProcess_AnnouncesNearDetection(t *testing.T) {
	h := newHarness(t, Options{FarFilter: true}, fusion.Recorded(fusion.KindObject, []detection.Raw{dog}))

	res, err := h.proc.Process(context.Background(), leftBlockFrame())
	require.NoError(t, err)

	require.Len(t, res.Detections, 1)
	assert.Empty(t, res.TooFar)
	assert.True(t, res.Decision.Announce)
	assert.Equal(t, announce.ReasonFirst, res.Decision.Reason)
	assert.True(t, res.Spoken)
	assert.Equal(t, []string{"Dog on your left, about 1.5 meters away"}, h.recorder.Spoken())

	// Same scene again inside the cooldown.
	res, err = h.proc.Process(context.Background(), leftBlockFrame())
	require.NoError(t, err)
	assert.False(t, res.Decision.Announce)
	assert.Len(t, h.recorder.Spoken(), 1)
}

func TestProcess_MutedSceneIsAnnouncedAfterUnmute(t *testing.T) {
	h := newHarness(t, Options{}, fusion.Recorded(fusion.KindObject, []detection.Raw{dog}))
	ctx := context.Background()

	h.speaker.SetMuted(true)
	res, err := h.proc.Process(ctx, imaging.NewFrame(120, 80))
	require.NoError(t, err)
	assert.True(t, res.Decision.Announce)
	assert.False(t, res.Spoken)

	h.speaker.SetMuted(false)
	h.clock.Add(5 * time.Second)
	res, err = h.proc.Process(ctx, imaging.NewFrame(120, 80))
	require.NoError(t, err)
	assert.Equal(t, announce.ReasonFirst, res.Decision.Reason)
	assert.True(t, res.Spoken)
	assert.Equal(t, []string{"Dog on your left, about 1.5 meters away"}, h.recorder.Spoken())
}

func TestProcess_FarFilterDropsDistantObjects(t *testing.T) {
	h := newHarness(t, Options{FarFilter: true}, fusion.Recorded(fusion.KindObject, []detection.Raw{dog}))

	res, err := h.proc.Process(context.Background(), imaging.NewFrame(120, 80))
	require.NoError(t, err)

	require.Len(t, res.TooFar, 1)
	assert.Equal(t, "Dog", res.TooFar[0].Label())
	assert.False(t, res.Decision.Announce)
	assert.Empty(t, h.recorder.Spoken())
}

func TestProcess_FarFilterOff(t *testing.T) {
	h := newHarness(t, Options{}, fusion.Recorded(fusion.KindObject, []detection.Raw{dog}))

	res, err := h.proc.Process(context.Background(), imaging.NewFrame(120, 80))
	require.NoError(t, err)
	assert.Empty(t, res.TooFar)
	assert.True(t, res.Spoken)
}

type fixedBoxes []geometry.Rect

func (b fixedBoxes) Boxes(context.Context, *imaging.Frame) ([]geometry.Rect, error) {
	return b, nil
}

type brokenBoxes struct{}

func (brokenBoxes) Boxes(context.Context, *imaging.Frame) ([]geometry.Rect, error) {
	return nil, errors.New("no model")
}

func TestProcess_AttachesGeometryToLabelOnlyHits(t *testing.T) {
	sofa := fusion.Recorded(fusion.KindClassification, []detection.Raw{{Label: "sofa", Confidence: 0.8}})

	h := newHarness(t, Options{Geometry: fixedBoxes{geometry.NewRect(0.7, 0.3, 0.25, 0.4)}}, sofa)
	res, err := h.proc.Process(context.Background(), imaging.NewFrame(120, 80))
	require.NoError(t, err)
	require.Len(t, res.Detections, 1)
	assert.True(t, res.Detections[0].HasGeometry())
	assert.Equal(t, geometry.ZoneRight, res.Detections[0].Position())

	h = newHarness(t, Options{Geometry: brokenBoxes{}}, sofa)
	res, err = h.proc.Process(context.Background(), imaging.NewFrame(120, 80))
	require.NoError(t, err)
	require.Len(t, res.Detections, 1)
	assert.False(t, res.Detections[0].HasGeometry())
	assert.Equal(t, geometry.ZoneCenter, res.Detections[0].Position())
}

func TestProcess_ContextCanceled(t *testing.T) {
	h := newHarness(t, Options{}, fusion.Recorded(fusion.KindObject, []detection.Raw{dog}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.proc.Process(ctx, leftBlockFrame())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSubmit_KeepsNewestFrame(t *testing.T) {
	h := newHarness(t, Options{}, fusion.Recorded(fusion.KindObject, nil))

	frames := []*imaging.Frame{imaging.NewFrame(1, 1), imaging.NewFrame(2, 2), imaging.NewFrame(3, 3)}
	for _, f := range frames {
		h.proc.Submit(f)
	}

	assert.Same(t, frames[2], <-h.proc.mailbox)
	assert.Equal(t, Stats{Submitted: 3, Dropped: 2}, h.proc.Stats())
}

func TestRun_ProcessesOneFrameAtATime(t *testing.T) {
	var inflight, overlaps atomic.Int32
	slow := fusion.NewChannel(fusion.KindObject, func(context.Context, *imaging.Frame) ([]detection.Raw, error) {
		if inflight.Add(1) > 1 {
			overlaps.Add(1)
		}
		time.Sleep(20 * time.Millisecond)
		inflight.Add(-1)
		return nil, nil
	})
	h := newHarness(t, Options{}, slow)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.proc.Run(ctx) }()

	for range 20 {
		h.proc.Submit(imaging.NewFrame(8, 8))
	}

	require.Eventually(t, func() bool {
		s := h.proc.Stats()
		return s.Processed+s.Dropped == s.Submitted
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	s := h.proc.Stats()
	assert.EqualValues(t, 20, s.Submitted)
	assert.Positive(t, s.Dropped)
	assert.Zero(t, overlaps.Load())
}

func TestProcess_OnFrame(t *testing.T) {
	var seen []FrameResult
	h := newHarness(t, Options{OnFrame: func(r FrameResult) { seen = append(seen, r) }},
		fusion.Recorded(fusion.KindObject, []detection.Raw{dog}))

	_, err := h.proc.Process(context.Background(), leftBlockFrame())
	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.True(t, seen[0].Spoken)
	assert.EqualValues(t, 1, h.proc.Stats().Processed)
}
