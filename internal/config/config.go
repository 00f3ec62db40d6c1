// Package config holds sightline's startup configuration.
//
// Configuration is a flat JSON object. Every option has a default, so an
// empty object (or no file at all) is a valid configuration. Durations
// accept Go duration strings ("4s", "1500ms") or plain numbers of seconds.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"go.uber.org/multierr"

	"github.com/ironsheep/sightline/internal/announce"
	"github.com/ironsheep/sightline/internal/detection"
	"github.com/ironsheep/sightline/internal/fusion"
	"github.com/ironsheep/sightline/internal/geometry"
	"github.com/ironsheep/sightline/internal/imaging"
	"github.com/ironsheep/sightline/internal/location"
)

// EnvPath names the environment variable holding a config file path.
const EnvPath = "SIGHTLINE_CONFIG"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config enumerates the recognized options.
type Config struct {
	// Zones are the position split boundaries.
	Zones geometry.Zones `json:"zone_boundaries"`

	// NMSIoU is the overlap above which boxes are merged.
	NMSIoU float64 `json:"nms_iou"`

	// NMSOrder is "input" or "confidence".
	NMSOrder detection.Order `json:"nms_order"`

	AnnounceCooldown  time.Duration `json:"announce_cooldown"`
	UtteranceCooldown time.Duration `json:"utterance_cooldown"`
	ScanWindow        time.Duration `json:"scan_window"`

	// DistancePreset names the far-object filter thresholds.
	DistancePreset string `json:"distance_preset"`

	// FarFilter enables the far-object filter for announcements.
	FarFilter bool `json:"far_filter"`

	// ChannelConfidence is the confidence floor per channel kind name.
	ChannelConfidence map[string]float64 `json:"channel_confidence"`

	// ChannelPriority orders channel kind names. Empty means the default
	// object, animal, face, classification order.
	ChannelPriority []string `json:"channel_priority"`

	// MaxImageDimension caps the longest side of images loaded from disk.
	MaxImageDimension int `json:"max_image_dimension"`

	OCRLanguage    string `json:"ocr_language"`
	TessdataPrefix string `json:"tessdata_prefix"`
	LogLevel       string `json:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Zones:             geometry.DefaultZones,
		NMSIoU:            detection.DefaultIoUThreshold,
		NMSOrder:          detection.OrderInput,
		AnnounceCooldown:  announce.DefaultCooldown,
		UtteranceCooldown: announce.DefaultUtteranceCooldown,
		ScanWindow:        location.DefaultScanWindow,
		DistancePreset:    imaging.DefaultDistance.Name,
		FarFilter:         true,
		ChannelConfidence: map[string]float64{
			fusion.KindObject.String():         0.5,
			fusion.KindAnimal.String():         0.5,
			fusion.KindFace.String():           0.5,
			fusion.KindClassification.String(): 0.3,
		},
		MaxImageDimension: imaging.DefaultMaxDimension,
		OCRLanguage:       "eng",
		LogLevel:          "info",
	}
}

// secondsToDurationHook lets durations be given as numbers of seconds.
func secondsToDurationHook() mapstructure.DecodeHookFuncType {
	durationType := reflect.TypeOf(time.Duration(0))
	return func(from, to reflect.Type, data any) (any, error) {
		if to != durationType {
			return data, nil
		}
		switch v := data.(type) {
		case float64:
			return time.Duration(v * float64(time.Second)), nil
		case float32:
			return time.Duration(float64(v) * float64(time.Second)), nil
		case int:
			return time.Duration(v) * time.Second, nil
		case int64:
			return time.Duration(v) * time.Second, nil
		}
		return data, nil
	}
}

// Decode applies raw options over the defaults. Unknown keys are an error.
func Decode(raw map[string]any) (Config, error) {
	cfg := Default()

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			secondsToDurationHook(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.TextUnmarshallerHookFunc(),
		),
	})
	if err != nil {
		return Config{}, err
	}
	if err := decoder.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return cfg, cfg.Validate()
}

// Load reads a JSON config file. An empty path yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		cfg := Default()
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	return Decode(raw)
}

// Validate reports every out-of-range option.
func (c Config) Validate() error {
	var errs error
	invalid := func(format string, args ...any) {
		errs = multierr.Append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if !c.Zones.Valid() {
		invalid("zone boundaries must satisfy 0 < left < right < 1, got %.2f/%.2f", c.Zones.Left, c.Zones.Right)
	}
	if c.NMSIoU <= 0 || c.NMSIoU > 1 {
		invalid("nms_iou must be in (0,1], got %v", c.NMSIoU)
	}
	if c.AnnounceCooldown < 0 || c.UtteranceCooldown < 0 {
		invalid("cooldowns must not be negative")
	}
	if c.ScanWindow <= 0 {
		invalid("scan_window must be positive, got %s", c.ScanWindow)
	}
	if _, err := imaging.PresetByName(c.DistancePreset); err != nil {
		invalid("%v", err)
	}
	for name, conf := range c.ChannelConfidence {
		if _, err := fusion.ParseKind(name); err != nil {
			invalid("channel_confidence: %v", err)
		}
		if conf < 0 || conf > 1 {
			invalid("channel_confidence[%s] must be in [0,1], got %v", name, conf)
		}
	}
	for _, name := range c.ChannelPriority {
		if _, err := fusion.ParseKind(name); err != nil {
			invalid("channel_priority: %v", err)
		}
	}
	if c.MaxImageDimension < 0 {
		invalid("max_image_dimension must not be negative")
	}
	return errs
}

// Distance returns the selected far-object preset.
func (c Config) Distance() (imaging.DistanceConfig, error) {
	return imaging.PresetByName(c.DistancePreset)
}

// FusionOptions converts the channel and NMS options for fusion.NewEngine.
func (c Config) FusionOptions() (fusion.Options, error) {
	opts := fusion.Options{
		Zones:         c.Zones,
		NMSThreshold:  c.NMSIoU,
		NMSOrder:      c.NMSOrder,
		MinConfidence: make(map[fusion.Kind]float64, len(c.ChannelConfidence)),
	}
	for name, conf := range c.ChannelConfidence {
		k, err := fusion.ParseKind(name)
		if err != nil {
			return fusion.Options{}, err
		}
		opts.MinConfidence[k] = conf
	}
	for _, name := range c.ChannelPriority {
		k, err := fusion.ParseKind(name)
		if err != nil {
			return fusion.Options{}, err
		}
		opts.Priority = append(opts.Priority, k)
	}
	return opts, nil
}
