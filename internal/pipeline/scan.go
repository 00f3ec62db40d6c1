package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/ironsheep/sightline/internal/announce"
	"github.com/ironsheep/sightline/internal/location"
)

// ErrNoScanner is returned by StartScan when the processor has no scanner.
var ErrNoScanner = errors.New("pipeline has no scanner")

// StartScan opens a "where am I" scan window and tells the user.
func (p *Processor) StartScan(ctx context.Context) (string, error) {
	if p.opts.Scanner == nil {
		return "", ErrNoScanner
	}
	id, err := p.opts.Scanner.Begin()
	if err != nil {
		return "", err
	}
	p.opts.Announcer.Speaker.Event(ctx, "Scanning surroundings")
	return id, nil
}

// ScanPhrase renders a scan result for speech.
func ScanPhrase(res location.ScanResult) string {
	switch res.Location {
	case location.Unknown:
		return "I couldn't tell where you are"
	case location.RoomWithPeople, location.IndoorSpace, location.IndoorArea:
		return fmt.Sprintf("You appear to be in a %s", res.Location)
	default:
		return fmt.Sprintf("You appear to be in the %s", res.Location)
	}
}

// AnnounceScan returns a scan result callback that speaks the inferred
// location as an event.
func AnnounceScan(speaker *announce.Speaker) func(location.ScanResult) {
	return func(res location.ScanResult) {
		speaker.Event(context.Background(), ScanPhrase(res))
	}
}
