package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/urfave/cli/v2"

	"github.com/ironsheep/sightline/internal/announce"
	"github.com/ironsheep/sightline/internal/detection"
	"github.com/ironsheep/sightline/internal/fusion"
	"github.com/ironsheep/sightline/internal/imaging"
	"github.com/ironsheep/sightline/internal/location"
	"github.com/ironsheep/sightline/internal/pipeline"
)

// Size of the blank frame used when a recorded frame has no image.
const replayFrameW, replayFrameH = 640, 480

type recordedFrame struct {
	// At is the frame's offset from the start of the recording, in seconds.
	At       float64           `json:"at"`
	Image    string            `json:"image,omitempty"`
	Scan     bool              `json:"scan,omitempty"`
	Channels []recordedChannel `json:"channels"`
}

type replayReport struct {
	Frames []pipeline.FrameResult `json:"frames"`
	Scans  []location.ScanResult  `json:"scans"`
	Spoken []string               `json:"spoken"`
	Stats  pipeline.Stats         `json:"stats"`
}

// replayChannel serves the current recorded frame's output for one kind.
type replayChannel struct {
	kind    fusion.Kind
	current *recordedFrame
}

func (ch *replayChannel) Kind() fusion.Kind { return ch.kind }

func (ch *replayChannel) Detect(ctx context.Context, f *imaging.Frame) ([]detection.Raw, error) {
	for _, rc := range ch.current.Channels {
		if rc.Kind == ch.kind {
			return rc.channel().Detect(ctx, f)
		}
	}
	return nil, nil
}

// replay drives recorded frames through the processor on a simulated clock,
// so cooldowns and scan windows behave as they would live.
func (r *runner) replay(c *cli.Context) error {
	path, err := requireArg(c, "recording")
	if err != nil {
		return err
	}

	var rec struct {
		Frames []recordedFrame `json:"frames"`
	}
	if err := readJSONFile(path, &rec); err != nil {
		return err
	}
	if len(rec.Frames) == 0 {
		return errors.New("recording has no frames")
	}

	opts, err := r.cfg.FusionOptions()
	if err != nil {
		return err
	}
	distance, err := r.cfg.Distance()
	if err != nil {
		return err
	}

	current := &recordedFrame{}
	var channels []fusion.Channel
	seen := make(map[fusion.Kind]bool)
	farFilter := r.cfg.FarFilter
	for _, fr := range rec.Frames {
		for _, rc := range fr.Channels {
			if !seen[rc.Kind] {
				seen[rc.Kind] = true
				channels = append(channels, &replayChannel{kind: rc.Kind, current: current})
			}
		}
		if fr.Image == "" {
			farFilter = false
		}
	}
	if r.cfg.FarFilter && !farFilter {
		r.logger.Infow("Far filter disabled: recording has frames without images")
	}

	engine, err := fusion.NewEngine(opts, r.logger.Named("fusion"), channels...)
	if err != nil {
		return err
	}

	mock := clock.NewMock()
	recorder := &announce.Recorder{}
	sink := announce.MultiSink{recorder, announce.LogSink{Logger: r.logger.Named("speech")}}
	speaker := announce.NewSpeaker(sink, r.cfg.UtteranceCooldown, mock, r.logger.Named("speaker"))

	var (
		mu     sync.Mutex
		report replayReport
	)
	announceScan := pipeline.AnnounceScan(speaker)
	scanner := location.NewScanner(r.cfg.ScanWindow, mock, r.logger.Named("scan"), func(res location.ScanResult) {
		announceScan(res)
		mu.Lock()
		report.Scans = append(report.Scans, res)
		mu.Unlock()
	})

	proc, err := pipeline.New(pipeline.Options{
		Engine: engine,
		Announcer: &announce.Announcer{
			Gate:    announce.NewGate(r.cfg.AnnounceCooldown, mock),
			Speaker: speaker,
		},
		Scanner:   scanner,
		Zones:     r.cfg.Zones,
		FarFilter: farFilter,
		Distance:  distance,
		Logger:    r.logger.Named("pipeline"),
	})
	if err != nil {
		return err
	}

	start := mock.Now()
	var scanEnds time.Time
	for i, fr := range rec.Frames {
		if at := start.Add(time.Duration(fr.At * float64(time.Second))); at.After(mock.Now()) {
			mock.Set(at)
		}
		// The window's timer fired inside Set but seals on its own goroutine.
		if !scanEnds.IsZero() && !mock.Now().Before(scanEnds) {
			scanner.Wait()
			scanEnds = time.Time{}
		}

		f := imaging.NewFrame(replayFrameW, replayFrameH)
		if fr.Image != "" {
			if f, err = imaging.LoadFrame(fr.Image, r.cfg.MaxImageDimension); err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}
		}

		if fr.Scan {
			if _, err := proc.StartScan(c.Context); err != nil {
				r.logger.Warnw("Scan not started", "frame", i, "err", err)
			} else {
				scanEnds = mock.Now().Add(r.cfg.ScanWindow)
			}
		}

		*current = fr
		res, err := proc.Process(c.Context, f)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		report.Frames = append(report.Frames, res)
	}

	// Let any open scan window expire and report.
	mock.Add(r.cfg.ScanWindow)
	scanner.Wait()

	mu.Lock()
	defer mu.Unlock()
	report.Spoken = recorder.Spoken()
	report.Stats = proc.Stats()
	return printJSON(c.App.Writer, report)
}
