package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/ironsheep/sightline/internal/config"
	"github.com/ironsheep/sightline/internal/log"
	"github.com/ironsheep/sightline/internal/ocr"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const (
	flagConfig = "config"
	flagDebug  = "debug"
)

// runner holds what every command needs once global flags are parsed.
type runner struct {
	cfg    config.Config
	logger *zap.SugaredLogger
}

func newApp() *cli.App {
	r := &runner{}

	return &cli.App{
		Name:            "sightline",
		Usage:           "detection fusion and spatial reasoning for assistive vision",
		Version:         Version,
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				EnvVars: []string{config.EnvPath},
				Usage:   "load configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging",
			},
		},
		Before: r.before,
		After: func(*cli.Context) error {
			log.Sync()
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the MCP server on stdin/stdout",
				Action: r.serve,
			},
			{
				Name:      "analyze",
				Usage:     "report pixel activity, resolved position and far checks for an image",
				ArgsUsage: "<image>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "preset", Usage: "distance preset (overrides config)"},
				},
				Action: r.analyze,
			},
			{
				Name:      "fuse",
				Usage:     "fuse recorded detector channel output",
				ArgsUsage: "<channels.json>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "image", Usage: "image the detections came from"},
					&cli.BoolFlag{Name: "all", Usage: "keep every detection of the winning channel"},
				},
				Action: r.fuse,
			},
			{
				Name:      "replay",
				Usage:     "run a recorded frame sequence through the live pipeline",
				ArgsUsage: "<recording.json>",
				Action:    r.replay,
			},
			{
				Name:      "where",
				Usage:     "infer the kind of place from object labels",
				ArgsUsage: "<label>...",
				Action:    r.where,
			},
			{
				Name:      "read",
				Usage:     "read the text in an image",
				ArgsUsage: "<image>",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "min-confidence", Value: 0.5, Usage: "minimum word confidence (0-1)"},
				},
				Action: r.read,
			},
			{
				Name:   "version",
				Usage:  "print version information",
				Action: versionAction,
			},
		},
	}
}

func (r *runner) before(c *cli.Context) error {
	cfg, err := config.Load(c.String(flagConfig))
	if err != nil {
		return err
	}
	r.cfg = cfg

	if c.Bool(flagDebug) {
		log.Init("debug")
	} else {
		log.InitFromEnv(cfg.LogLevel)
	}
	r.logger = log.L()
	r.logger.Debugw("Starting", "version", Version, "built", BuildTime, "commit", GitCommit)
	return nil
}

func versionAction(c *cli.Context) error {
	fmt.Fprintf(c.App.Writer, "sightline %s\n", Version)
	fmt.Fprintf(c.App.Writer, "  Build time: %s\n", BuildTime)
	fmt.Fprintf(c.App.Writer, "  Git commit: %s\n", GitCommit)

	info := ocr.GetInfo()
	if info.Available {
		fmt.Fprintf(c.App.Writer, "  OCR backend: %s (tesseract %s)\n", info.Backend, info.Version)
	} else {
		fmt.Fprintf(c.App.Writer, "  OCR backend: %s (unavailable)\n", info.Backend)
	}
	return nil
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
