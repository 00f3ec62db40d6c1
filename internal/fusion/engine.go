// Package fusion merges the output of independent detector channels into one
// authoritative detection set per frame.
package fusion

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/sightline/internal/detection"
	"github.com/ironsheep/sightline/internal/geometry"
	"github.com/ironsheep/sightline/internal/imaging"
)

// ErrNoChannels is returned by NewEngine when no channel is supplied.
var ErrNoChannels = errors.New("fusion engine needs at least one channel")

// Options configure an Engine.
type Options struct {
	// Zones splits frames into positions.
	Zones geometry.Zones

	// MinConfidence is the confidence floor per channel kind. Kinds without
	// an entry keep every hit.
	MinConfidence map[Kind]float64

	// Priority orders channel kinds, most authoritative first. Kinds not
	// listed rank after all listed ones. Empty means DefaultPriority.
	Priority []Kind

	// NMSThreshold is the IoU above which same-channel boxes are merged.
	NMSThreshold float64

	// NMSOrder selects the NMS visiting order.
	NMSOrder detection.Order
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Zones:        geometry.DefaultZones,
		Priority:     DefaultPriority,
		NMSThreshold: detection.DefaultIoUThreshold,
		NMSOrder:     detection.OrderInput,
	}
}

// Result is the outcome of fusing one frame.
type Result struct {
	// Detections is the promoted channel's output: all of it in returnAll
	// mode, otherwise its single most confident detection.
	Detections []detection.Detection `json:"detections"`

	// Source is the promoted channel. Meaningless when Detections is empty.
	Source Kind `json:"source"`

	// Counts holds the number of normalized detections each channel
	// produced, in priority order.
	Counts []ChannelCount `json:"counts"`
}

// ChannelCount reports one channel's contribution to a frame.
type ChannelCount struct {
	Kind   Kind   `json:"kind"`
	Count  int    `json:"count"`
	Failed bool   `json:"failed,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Engine runs channels concurrently and selects one channel's result by
// priority. It holds no per-frame state and is safe for concurrent use.
type Engine struct {
	channels []Channel
	opts     Options
	logger   *zap.SugaredLogger
}

// NewEngine builds an engine over the given channels, ordering them by
// opts.Priority. A nil logger discards log output.
func NewEngine(opts Options, logger *zap.SugaredLogger, channels ...Channel) (*Engine, error) {
	if len(channels) == 0 {
		return nil, ErrNoChannels
	}
	if len(opts.Priority) == 0 {
		opts.Priority = DefaultPriority
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	rank := make(map[Kind]int, len(opts.Priority))
	for i, k := range opts.Priority {
		if _, dup := rank[k]; !dup {
			rank[k] = i
		}
	}
	rankOf := func(k Kind) int {
		if r, ok := rank[k]; ok {
			return r
		}
		return len(opts.Priority)
	}

	ordered := append([]Channel(nil), channels...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return rankOf(ordered[i].Kind()) < rankOf(ordered[j].Kind())
	})

	return &Engine{channels: ordered, opts: opts, logger: logger}, nil
}

// Channels returns the channel kinds in priority order.
func (e *Engine) Channels() []Kind {
	kinds := make([]Kind, len(e.channels))
	for i, ch := range e.channels {
		kinds[i] = ch.Kind()
	}
	return kinds
}

// Fuse returns the frame's authoritative detections. An empty result means
// nothing was detected; the only error is ctx being done.
func (e *Engine) Fuse(ctx context.Context, f *imaging.Frame, returnAll bool) ([]detection.Detection, error) {
	res, err := e.FuseResult(ctx, f, returnAll)
	if err != nil {
		return nil, err
	}
	return res.Detections, nil
}

// FuseResult is Fuse with per-channel diagnostics.
//
// Every channel runs concurrently; the decision is made only after all of
// them have finished, since a slow higher-priority channel outranks a fast
// lower-priority one. Each channel's hits are normalized and passed through
// NMS before selection.
func (e *Engine) FuseResult(ctx context.Context, f *imaging.Frame, returnAll bool) (Result, error) {
	results := make([][]detection.Detection, len(e.channels))
	counts := make([]ChannelCount, len(e.channels))

	// Label-only hits from several channels share one activity scan.
	resolve := sync.OnceValue(func() geometry.Zone {
		return imaging.ResolvePosition(f)
	})

	g, gctx := errgroup.WithContext(ctx)
	for i, ch := range e.channels {
		g.Go(func() error {
			counts[i].Kind = ch.Kind()

			raws, err := ch.Detect(gctx, f)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				e.logger.Warnw("Channel failed, treating as empty", "channel", ch.Kind(), "err", err)
				counts[i].Failed = true
				counts[i].Error = err.Error()
				return nil
			}

			n := detection.Normalizer{Zones: e.opts.Zones, MinConfidence: e.opts.MinConfidence[ch.Kind()]}
			dets := n.NormalizeAll(raws, resolve, returnAll)
			dets = detection.NMS(dets, e.opts.NMSThreshold, e.opts.NMSOrder)

			results[i] = dets
			counts[i].Count = len(dets)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	res := Result{Detections: []detection.Detection{}, Counts: counts}
	for i, dets := range results {
		if len(dets) == 0 {
			continue
		}
		res.Source = e.channels[i].Kind()
		if returnAll {
			res.Detections = dets
		} else {
			res.Detections = []detection.Detection{mostConfident(dets)}
		}
		e.logger.Debugw("Fused frame",
			"source", res.Source,
			"kept", len(res.Detections),
			"available", len(dets),
			"return_all", returnAll)
		return res, nil
	}

	e.logger.Debugw("Fused frame", "source", "none")
	return res, nil
}

// mostConfident returns the highest-confidence detection; the earliest wins
// ties, so output already sorted by the channel is kept as-is.
func mostConfident(dets []detection.Detection) detection.Detection {
	best := dets[0]
	for _, d := range dets[1:] {
		if d.Confidence() > best.Confidence() {
			best = d
		}
	}
	return best
}
