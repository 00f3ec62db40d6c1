// Package pipeline schedules camera frames through fusion, distance and
// announcement, one frame at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/ironsheep/sightline/internal/announce"
	"github.com/ironsheep/sightline/internal/detection"
	"github.com/ironsheep/sightline/internal/fusion"
	"github.com/ironsheep/sightline/internal/geometry"
	"github.com/ironsheep/sightline/internal/imaging"
	"github.com/ironsheep/sightline/internal/location"
)

// GeometrySource is a label-agnostic detector that only finds boxes. It
// supplies geometry for label-only detections.
type GeometrySource interface {
	Boxes(ctx context.Context, f *imaging.Frame) ([]geometry.Rect, error)
}

// Options wire a Processor. Engine and Announcer are required.
type Options struct {
	Engine    *fusion.Engine
	Announcer *announce.Announcer

	// Scanner collects detections for location inference. Optional.
	Scanner *location.Scanner

	// Geometry pairs label-only detections with boxes. Optional.
	Geometry GeometrySource

	Zones geometry.Zones

	// FarFilter drops detections judged too far away under Distance before
	// they reach the announcer.
	FarFilter bool
	Distance  imaging.DistanceConfig

	Logger *zap.SugaredLogger

	// OnFrame observes every processed frame. Optional.
	OnFrame func(FrameResult)
}

// FrameResult describes what happened to one frame.
type FrameResult struct {
	Detections []detection.Detection `json:"detections"`
	TooFar     []detection.Detection `json:"too_far,omitempty"`
	Scanning   bool                  `json:"scanning"`
	Decision   announce.Decision     `json:"decision"`
	Spoken     bool                  `json:"spoken"`
}

// Stats counts frames handled by a Processor.
type Stats struct {
	Submitted uint64 `json:"submitted"`
	Processed uint64 `json:"processed"`
	Dropped   uint64 `json:"dropped"`
}

// Processor runs frames through the detection pipeline strictly one at a
// time. Frames are delivered through a single-slot mailbox: when processing
// falls behind, older pending frames are dropped in favor of the newest.
type Processor struct {
	opts    Options
	logger  *zap.SugaredLogger
	mailbox chan *imaging.Frame

	submitted atomic.Uint64
	processed atomic.Uint64
	dropped   atomic.Uint64
}

// New builds a processor.
func New(opts Options) (*Processor, error) {
	if opts.Engine == nil || opts.Announcer == nil {
		return nil, errors.New("pipeline needs a fusion engine and an announcer")
	}
	if opts.Zones == (geometry.Zones{}) {
		opts.Zones = geometry.DefaultZones
	}
	if opts.Distance == (imaging.DistanceConfig{}) {
		opts.Distance = imaging.DefaultDistance
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Processor{
		opts:    opts,
		logger:  logger,
		mailbox: make(chan *imaging.Frame, 1),
	}, nil
}

// Submit hands a frame to the processor without blocking. A frame still
// waiting in the mailbox is replaced and counted as dropped.
func (p *Processor) Submit(f *imaging.Frame) {
	p.submitted.Add(1)
	for {
		select {
		case p.mailbox <- f:
			return
		default:
		}
		select {
		case <-p.mailbox:
			p.dropped.Add(1)
		default:
		}
	}
}

// Run processes submitted frames until ctx is done.
func (p *Processor) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f := <-p.mailbox:
			if _, err := p.Process(ctx, f); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				p.logger.Warnw("Frame processing failed", "err", err)
			}
		}
	}
}

// Stats returns the frame counters.
func (p *Processor) Stats() Stats {
	return Stats{
		Submitted: p.submitted.Load(),
		Processed: p.processed.Load(),
		Dropped:   p.dropped.Load(),
	}
}

// Process runs one frame synchronously. Run calls it for mailbox frames;
// callers driving frames themselves must not call it concurrently.
//
// While a scan is open every channel hit is kept and contributed to the
// scan, and per-frame announcements pause until the scan reports.
func (p *Processor) Process(ctx context.Context, f *imaging.Frame) (FrameResult, error) {
	var res FrameResult
	res.Scanning = p.opts.Scanner != nil && p.opts.Scanner.Accepting()

	dets, err := p.opts.Engine.Fuse(ctx, f, res.Scanning)
	if err != nil {
		return res, fmt.Errorf("fusion: %w", err)
	}

	if p.opts.Geometry != nil {
		dets = p.attachGeometry(ctx, f, dets)
	}
	res.Detections = dets

	if res.Scanning {
		p.opts.Scanner.Offer(dets)
		p.finish(res)
		return res, nil
	}

	near := dets
	if p.opts.FarFilter {
		near = make([]detection.Detection, 0, len(dets))
		for _, d := range dets {
			if imaging.IsTooFar(f, d.Position(), p.opts.Distance) {
				res.TooFar = append(res.TooFar, d)
				continue
			}
			near = append(near, d)
		}
	}

	res.Decision, res.Spoken = p.opts.Announcer.Frame(ctx, near)
	p.finish(res)
	return res, nil
}

func (p *Processor) finish(res FrameResult) {
	p.processed.Add(1)
	p.logger.Debugw("Frame processed",
		"detections", len(res.Detections),
		"too_far", len(res.TooFar),
		"scanning", res.Scanning,
		"announce", res.Decision.Announce,
		"reason", res.Decision.Reason)
	if p.opts.OnFrame != nil {
		p.opts.OnFrame(res)
	}
}

// attachGeometry matches label-only detections against the geometry
// source's boxes. Detections that already have geometry are kept as-is.
func (p *Processor) attachGeometry(ctx context.Context, f *imaging.Frame, dets []detection.Detection) []detection.Detection {
	var labelOnly []int
	for i, d := range dets {
		if !d.HasGeometry() {
			labelOnly = append(labelOnly, i)
		}
	}
	if len(labelOnly) == 0 {
		return dets
	}

	boxes, err := p.opts.Geometry.Boxes(ctx, f)
	if err != nil {
		p.logger.Warnw("Geometry source failed", "err", err)
		return dets
	}

	subset := make([]detection.Detection, len(labelOnly))
	for j, i := range labelOnly {
		subset[j] = dets[i]
	}
	matched := detection.MatchBoxes(subset, boxes, p.opts.Zones)

	out := append([]detection.Detection(nil), dets...)
	for j, i := range labelOnly {
		out[i] = matched[j]
	}
	return out
}
