package announce

import (
	"context"

	"github.com/ironsheep/sightline/internal/detection"
)

// Announcer runs fused detections through the gate and speaks the ones it
// lets through.
type Announcer struct {
	Gate    *Gate
	Speaker *Speaker
}

// Frame offers one frame's fused detections. The returned decision is the
// gate's; spoken reports whether the utterance layer also let it through.
// The gate only remembers scenes that were spoken.
func (a *Announcer) Frame(ctx context.Context, dets []detection.Detection) (d Decision, spoken bool) {
	d = a.Gate.Check(dets)
	if !d.Announce {
		return d, false
	}
	if spoken = a.Speaker.Announce(ctx, Phrases(dets), false); spoken {
		a.Gate.Commit(dets)
	}
	return d, spoken
}
