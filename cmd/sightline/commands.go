package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ironsheep/sightline/internal/announce"
	"github.com/ironsheep/sightline/internal/detection"
	"github.com/ironsheep/sightline/internal/fusion"
	"github.com/ironsheep/sightline/internal/geometry"
	"github.com/ironsheep/sightline/internal/imaging"
	"github.com/ironsheep/sightline/internal/location"
	"github.com/ironsheep/sightline/internal/ocr"
	"github.com/ironsheep/sightline/internal/server"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func requireArg(c *cli.Context, name string) (string, error) {
	if c.NArg() < 1 {
		return "", fmt.Errorf("missing %s argument", name)
	}
	return c.Args().First(), nil
}

func (r *runner) serve(c *cli.Context) error {
	srv := server.New(r.cfg, Version, r.logger.Named("server"))
	r.logger.Infow("MCP server listening on stdio", "version", Version)
	err := srv.Run(c.Context)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (r *runner) analyze(c *cli.Context) error {
	path, err := requireArg(c, "image")
	if err != nil {
		return err
	}

	preset, err := r.cfg.Distance()
	if err != nil {
		return err
	}
	if name := c.String("preset"); name != "" {
		if preset, err = imaging.PresetByName(name); err != nil {
			return err
		}
	}

	f, err := imaging.LoadFrame(path, r.cfg.MaxImageDimension)
	if err != nil {
		return err
	}

	far := make([]imaging.FarAnalysis, 0, len(geometry.AllZones))
	for _, z := range geometry.AllZones {
		far = append(far, imaging.AnalyzeFar(f, z, preset))
	}

	return printJSON(c.App.Writer, struct {
		Width    int                    `json:"width"`
		Height   int                    `json:"height"`
		Activity imaging.ActivityReport `json:"activity"`
		Preset   string                 `json:"preset"`
		Far      []imaging.FarAnalysis  `json:"far"`
	}{f.Width, f.Height, imaging.AnalyzeActivity(f), preset.Name, far})
}

// recordedChannel is one detector channel's output as stored on disk.
type recordedChannel struct {
	Kind       fusion.Kind     `json:"kind"`
	Detections []detection.Raw `json:"detections"`
	Error      string          `json:"error,omitempty"`
}

func (rc recordedChannel) channel() fusion.Channel {
	if rc.Error == "" {
		return fusion.Recorded(rc.Kind, rc.Detections)
	}
	failure := errors.New(rc.Error)
	return fusion.NewChannel(rc.Kind, func(context.Context, *imaging.Frame) ([]detection.Raw, error) {
		return nil, failure
	})
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func (r *runner) fuse(c *cli.Context) error {
	path, err := requireArg(c, "channels file")
	if err != nil {
		return err
	}

	var rec struct {
		Channels []recordedChannel `json:"channels"`
	}
	if err := readJSONFile(path, &rec); err != nil {
		return err
	}

	channels := make([]fusion.Channel, len(rec.Channels))
	for i, rc := range rec.Channels {
		channels[i] = rc.channel()
	}

	opts, err := r.cfg.FusionOptions()
	if err != nil {
		return err
	}
	engine, err := fusion.NewEngine(opts, r.logger.Named("fusion"), channels...)
	if err != nil {
		return err
	}

	var f *imaging.Frame
	if img := c.String("image"); img != "" {
		if f, err = imaging.LoadFrame(img, r.cfg.MaxImageDimension); err != nil {
			return err
		}
	}

	res, err := engine.FuseResult(c.Context, f, c.Bool("all"))
	if err != nil {
		return err
	}

	return printJSON(c.App.Writer, struct {
		fusion.Result
		Phrase string `json:"phrase"`
	}{res, announce.Phrases(res.Detections)})
}

func (r *runner) where(c *cli.Context) error {
	labels := c.Args().Slice()
	if len(labels) == 0 {
		return errors.New("missing label arguments")
	}
	return printJSON(c.App.Writer, struct {
		Location string           `json:"location"`
		Scores   []location.Score `json:"scores"`
	}{location.Infer(labels), location.Scores(labels)})
}

func (r *runner) read(c *cli.Context) error {
	path, err := requireArg(c, "image")
	if err != nil {
		return err
	}

	img, err := imaging.LoadImage(path, r.cfg.MaxImageDimension)
	if err != nil {
		return err
	}

	reader := ocr.Tesseract{Language: r.cfg.OCRLanguage, TessdataPrefix: r.cfg.TessdataPrefix}
	obs, err := reader.Recognize(c.Context, img)
	if err != nil {
		return err
	}

	return printJSON(c.App.Writer, struct {
		Words    []ocr.Observation `json:"words"`
		Sentence string            `json:"sentence"`
	}{ocr.ReadingOrder(obs), ocr.Sentence(obs, c.Float64("min-confidence"))})
}
