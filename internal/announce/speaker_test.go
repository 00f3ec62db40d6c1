package announce

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"

	"github.com/ironsheep/sightline/internal/detection"
	"github.com/ironsheep/sightline/internal/geometry"
	"github.com/ironsheep/sightline/internal/log"
)

type failingSink struct{}

func (failingSink) Speak(context.Context, string) error { return errors.New("no audio device") }
func (failingSink) Stop(context.Context) error          { return errors.New("no audio device") }

func TestSpeaker_UtteranceCooldown(t *testing.T) {
	ctx := context.Background()
	mock := clock.NewMock()
	rec := &Recorder{}
	s := NewSpeaker(rec, 2*time.Second, mock, nil)

	assert.True(t, s.Announce(ctx, "one", false))
	mock.Add(time.Second)
	assert.False(t, s.Announce(ctx, "two", false))
	assert.True(t, s.Announce(ctx, "three", true), "bypass ignores the cooldown")
	mock.Add(2 * time.Second)
	assert.True(t, s.Announce(ctx, "four", false))

	assert.Equal(t, []string{"one", "three", "four"}, rec.Spoken())
	assert.Zero(t, rec.Stops())
}

func TestSpeaker_EventInterrupts(t *testing.T) {
	ctx := context.Background()
	mock := clock.NewMock()
	rec := &Recorder{}
	s := NewSpeaker(rec, 2*time.Second, mock, nil)

	s.Announce(ctx, "Chair ahead", false)
	assert.True(t, s.Event(ctx, "Scan started"))
	assert.Equal(t, 1, rec.Stops())

	s.SetMuted(true)
	assert.True(t, s.Muted())
	assert.False(t, s.Announce(ctx, "Table ahead", true), "muted speaker drops announcements")
	assert.True(t, s.Event(ctx, "Muted"), "events are spoken while muted")

	assert.Equal(t, []string{"Chair ahead", "Scan started", "Muted"}, rec.Spoken())
}

func TestSpeaker_SinkFailure(t *testing.T) {
	s := NewSpeaker(failingSink{}, 0, clock.NewMock(), log.Nop())
	assert.False(t, s.Announce(context.Background(), "hello", false))
	assert.False(t, s.Event(context.Background(), "hello"))
}

func TestAnnouncer_Frame(t *testing.T) {
	ctx := context.Background()
	mock := clock.NewMock()
	rec := &Recorder{}
	a := &Announcer{
		Gate:    NewGate(4*time.Second, mock),
		Speaker: NewSpeaker(rec, 2*time.Second, mock, nil),
	}

	dog := detection.New("Dog", 0.6, leftBox, geometry.DefaultZones)

	d, spoken := a.Frame(ctx, []detection.Detection{dog})
	assert.True(t, d.Announce)
	assert.True(t, spoken)

	mock.Add(time.Second)
	_, spoken = a.Frame(ctx, []detection.Detection{dog})
	assert.False(t, spoken)

	assert.Equal(t, []string{"Dog on your left, about 1.5 meters away"}, rec.Spoken())
}

func TestAnnouncer_UnspokenSceneIsOfferedAgain(t *testing.T) {
	ctx := context.Background()
	mock := clock.NewMock()
	rec := &Recorder{}
	a := &Announcer{
		Gate:    NewGate(4*time.Second, mock),
		Speaker: NewSpeaker(rec, 2*time.Second, mock, nil),
	}
	dogs := one("Dog", leftBox)

	a.Speaker.SetMuted(true)
	d, spoken := a.Frame(ctx, dogs)
	assert.Equal(t, Decision{Announce: true, Reason: ReasonFirst}, d)
	assert.False(t, spoken)

	a.Speaker.SetMuted(false)
	d, spoken = a.Frame(ctx, dogs)
	assert.Equal(t, Decision{Announce: true, Reason: ReasonFirst}, d)
	assert.True(t, spoken)

	// The utterance cooldown restarted by an event drops the next change.
	mock.Add(5 * time.Second)
	a.Speaker.Event(ctx, "Scanning surroundings")
	moved := one("Dog", rightBox)
	d, spoken = a.Frame(ctx, moved)
	assert.True(t, d.Announce)
	assert.False(t, spoken)

	mock.Add(2 * time.Second)
	d, spoken = a.Frame(ctx, moved)
	assert.Equal(t, ReasonPositionMoved, d.Reason)
	assert.True(t, spoken)

	assert.Equal(t, []string{
		"Dog on your left, about 1.5 meters away",
		"Scanning surroundings",
		"Dog on your right, about 1.5 meters away",
	}, rec.Spoken())
}

func TestPhrase(t *testing.T) {
	tests := []struct {
		det  detection.Detection
		want string
	}{
		{detection.New("Dog", 0.6, leftBox, geometry.DefaultZones), "Dog on your left, about 1.5 meters away"},
		{detection.New("Sofa", 0.9, geometry.NewRect(0.3, 0.2, 0.4, 0.6), geometry.DefaultZones), "Sofa ahead, about 0.5 meters away"},
		{detection.New("Cup", 0.9, geometry.NewRect(0.7, 0.2, 0.3, 0.3), geometry.DefaultZones), "Cup on your right, about 1 meter away"},
		{detection.New("Tree", 0.9, geometry.NewRect(0.7, 0.2, 0.05, 0.05), geometry.DefaultZones), "Tree on your right, about 4 meters away"},
		{detection.NewLabelOnly("Kitchen", 0.9, geometry.ZoneCenter, geometry.DefaultZones), "Kitchen ahead"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Phrase(tt.det))
		})
	}
}

func TestPhrases(t *testing.T) {
	dets := []detection.Detection{
		detection.NewLabelOnly("Bed", 0.9, geometry.ZoneLeft, geometry.DefaultZones),
		detection.NewLabelOnly("Lamp", 0.9, geometry.ZoneRight, geometry.DefaultZones),
	}
	assert.Equal(t, "Bed on your left. Lamp on your right", Phrases(dets))
}
