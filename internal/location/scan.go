package location

import (
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ironsheep/sightline/internal/detection"
)

// DefaultScanWindow is how long a scan accepts detections.
const DefaultScanWindow = 2 * time.Second

// ErrScanInProgress is returned by Begin while an earlier scan is still
// open or sealing.
var ErrScanInProgress = errors.New("scan already in progress")

// ScanResult is the outcome of one sealed scan.
type ScanResult struct {
	ID         string    `json:"id"`
	Started    time.Time `json:"started"`
	Sealed     time.Time `json:"sealed"`
	Frames     int       `json:"frames"`
	Detections int       `json:"detections"`
	Labels     []string  `json:"labels"`
	Location   string    `json:"location"`
	Scores     []Score   `json:"scores"`
}

type batch struct {
	id      string
	started time.Time
	frames  int
	count   int
	labels  []string
	seen    map[string]struct{}
}

func (b *batch) add(dets []detection.Detection) {
	b.frames++
	b.count += len(dets)
	for _, d := range dets {
		if _, ok := b.seen[d.Label()]; ok {
			continue
		}
		b.seen[d.Label()] = struct{}{}
		b.labels = append(b.labels, d.Label())
	}
}

// Scanner runs time-boxed environment scans.
//
// Begin opens a window; frames offered while it is open contribute their
// detections. When the window expires the batch is sealed, inferred and
// handed to the result callback exactly once. Windows never overlap: Begin
// fails until the previous scan's callback has returned. A scan cannot be
// cancelled once started.
type Scanner struct {
	clock    clock.Clock
	window   time.Duration
	onResult func(ScanResult)
	logger   *zap.SugaredLogger

	mu         sync.Mutex
	open       *batch
	inProgress bool
	sealing    sync.WaitGroup
}

// NewScanner returns an idle scanner. A nil clock uses the wall clock and a
// nil logger discards output. onResult may be nil.
func NewScanner(window time.Duration, clk clock.Clock, logger *zap.SugaredLogger, onResult func(ScanResult)) *Scanner {
	if window <= 0 {
		window = DefaultScanWindow
	}
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Scanner{clock: clk, window: window, onResult: onResult, logger: logger}
}

// Begin opens a new scan window and returns its id.
func (s *Scanner) Begin() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inProgress {
		return "", ErrScanInProgress
	}

	b := &batch{
		id:      uuid.NewString(),
		started: s.clock.Now(),
		seen:    make(map[string]struct{}),
	}
	s.open = b
	s.inProgress = true
	s.sealing.Add(1)
	s.clock.AfterFunc(s.window, func() { s.seal(b) })

	s.logger.Infow("Scan started", "scan_id", b.id, "window", s.window)
	return b.id, nil
}

// Offer adds one frame's detections to the open scan. It reports false when
// no scan is accepting contributions.
func (s *Scanner) Offer(dets []detection.Detection) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open == nil {
		return false
	}
	s.open.add(dets)
	return true
}

// Accepting reports whether a scan window is open.
func (s *Scanner) Accepting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open != nil
}

// InProgress reports whether a scan is open or still sealing.
func (s *Scanner) InProgress() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inProgress
}

func (s *Scanner) seal(b *batch) {
	s.mu.Lock()
	if s.open != b {
		s.mu.Unlock()
		return
	}
	s.open = nil
	s.mu.Unlock()

	res := ScanResult{
		ID:         b.id,
		Started:    b.started,
		Sealed:     s.clock.Now(),
		Frames:     b.frames,
		Detections: b.count,
		Labels:     b.labels,
		Location:   Infer(b.labels),
		Scores:     Scores(b.labels),
	}
	if res.Labels == nil {
		res.Labels = []string{}
	}

	s.logger.Infow("Scan sealed",
		"scan_id", res.ID,
		"frames", res.Frames,
		"labels", len(res.Labels),
		"location", res.Location)

	if s.onResult != nil {
		s.onResult(res)
	}

	s.mu.Lock()
	s.inProgress = false
	s.mu.Unlock()
	s.sealing.Done()
}

// Wait blocks until the current scan, if any, has sealed and its callback
// has returned. It must not run concurrently with Begin.
func (s *Scanner) Wait() {
	s.sealing.Wait()
}
