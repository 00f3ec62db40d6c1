package fusion

import (
	"context"
	"fmt"
	"strings"

	"github.com/ironsheep/sightline/internal/detection"
	"github.com/ironsheep/sightline/internal/imaging"
)

// Kind identifies the detector behind a channel.
type Kind int

const (
	// KindObject is a general object detector that produces boxes.
	KindObject Kind = iota
	// KindAnimal is an animal recognizer that produces boxes.
	KindAnimal
	// KindFace is a face detector.
	KindFace
	// KindClassification is a label-only image classifier.
	KindClassification
)

// DefaultPriority is the order in which channel results are considered.
var DefaultPriority = []Kind{KindObject, KindAnimal, KindFace, KindClassification}

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindAnimal:
		return "animal"
	case KindFace:
		return "face"
	case KindClassification:
		return "classification"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind converts a channel kind name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "object", "general":
		return KindObject, nil
	case "animal":
		return KindAnimal, nil
	case "face":
		return KindFace, nil
	case "classification", "classifier", "label":
		return KindClassification, nil
	default:
		return 0, fmt.Errorf("unknown channel kind %q", s)
	}
}

// MarshalText encodes the kind name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Channel is one independent detector run against a frame.
//
// Detect may be slow and may fail; a failure counts as "nothing detected".
// It must return promptly once ctx is done.
type Channel interface {
	Kind() Kind
	Detect(ctx context.Context, f *imaging.Frame) ([]detection.Raw, error)
}

// DetectFunc is the signature of a channel's detection step.
type DetectFunc func(ctx context.Context, f *imaging.Frame) ([]detection.Raw, error)

type funcChannel struct {
	kind Kind
	fn   DetectFunc
}

func (c funcChannel) Kind() Kind { return c.kind }

func (c funcChannel) Detect(ctx context.Context, f *imaging.Frame) ([]detection.Raw, error) {
	return c.fn(ctx, f)
}

// NewChannel wraps a function as a Channel.
func NewChannel(kind Kind, fn DetectFunc) Channel {
	return funcChannel{kind: kind, fn: fn}
}

// Recorded returns a channel that always reports the same hits. It replays
// detector output captured elsewhere.
func Recorded(kind Kind, raws []detection.Raw) Channel {
	return NewChannel(kind, func(context.Context, *imaging.Frame) ([]detection.Raw, error) {
		return raws, nil
	})
}
