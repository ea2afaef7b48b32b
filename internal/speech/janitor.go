package speech

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/abhisek/talkie/internal/logger"
)

// SweepInterval is how often the janitor looks for stale audio.
const SweepInterval = 10 * time.Minute

// Janitor deletes generated audio older than a maximum age.
type Janitor struct {
	dir       string
	maxAge    time.Duration
	now       func() time.Time
	log       *logger.Logger
	scheduler *gocron.Scheduler
}

// NewJanitor returns a Janitor for dir.
func NewJanitor(dir string, maxAge time.Duration, log *logger.Logger) *Janitor {
	if log == nil {
		log = logger.Nop()
	}
	return &Janitor{
		dir:    dir,
		maxAge: maxAge,
		now:    time.Now,
		log:    log.With("component", "audio-janitor"),
	}
}

// Start sweeps every SweepInterval in the background, starting now.
func (j *Janitor) Start() error {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	if _, err := s.Every(SweepInterval).Do(j.run); err != nil {
		return fmt.Errorf("schedule audio sweep: %w", err)
	}
	s.StartAsync()
	j.scheduler = s
	return nil
}

// Stop halts the background sweeps.
func (j *Janitor) Stop() {
	if j.scheduler != nil {
		j.scheduler.Stop()
	}
}

func (j *Janitor) run() {
	n, err := j.Sweep()
	if err != nil {
		j.log.Warn("audio sweep failed", "dir", j.dir, "error", err)
		return
	}
	if n > 0 {
		j.log.Info("removed stale audio", "dir", j.dir, "files", n)
	}
}

// Sweep removes .mp3 files whose modification time is older than the
// maximum age and returns how many were removed. A missing directory is
// not an error.
func (j *Janitor) Sweep() (int, error) {
	entries, err := os.ReadDir(j.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read audio dir: %w", err)
	}

	cutoff := j.now().Add(-j.maxAge)
	removed := 0
	var errs []error
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".mp3") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(j.dir, e.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}
