package media

import (
	"sync"
	"time"
)

// Observer receives pipeline telemetry. The metrics package implements it;
// the pipeline itself records nothing unless one is installed.
type Observer interface {
	// ObserveStage records the duration of one stage ("decode", "rasterize",
	// "probe", "capture", ...) of a derivation of the given kind.
	ObserveStage(kind, stage string, d time.Duration)

	// ObserveDerivation records a finished call with its Status label and
	// output size (0 on failure).
	ObserveDerivation(kind, status string, d time.Duration, outputBytes int)

	// HandleAcquired and HandleReleased bracket every decode handle.
	HandleAcquired(kind string)
	HandleReleased(kind string)
}

type nopObserver struct{}

func (nopObserver) ObserveStage(string, string, time.Duration) {}
func (nopObserver) ObserveDerivation(string, string, time.Duration, int) {}
func (nopObserver) HandleAcquired(string) {}
func (nopObserver) HandleReleased(string) {}

// NopObserver returns an Observer that discards everything.
func NopObserver() Observer {
	return nopObserver{}
}

var (
	defaultObserver   Observer
	defaultObserverMu sync.RWMutex
)

// SetObserver installs the package-level observer used by encoders and
// samplers that were not given one explicitly. Call once at startup.
func SetObserver(o Observer) {
	defaultObserverMu.Lock()
	defer defaultObserverMu.Unlock()
	defaultObserver = o
}

// ResolveObserver returns o if set, otherwise the package-level observer,
// otherwise a no-op.
func ResolveObserver(o Observer) Observer {
	if o != nil {
		return o
	}
	defaultObserverMu.RLock()
	defer defaultObserverMu.RUnlock()
	if defaultObserver != nil {
		return defaultObserver
	}
	return nopObserver{}
}

// StageTimer times one stage against an observer.
type StageTimer struct {
	obs   Observer
	kind  string
	start time.Time
}

// StartStage begins timing a stage.
func StartStage(obs Observer, kind string) StageTimer {
	return StageTimer{obs: obs, kind: kind, start: time.Now()}
}

// Done records the elapsed time under stage and restarts the timer.
func (t *StageTimer) Done(stage string) {
	now := time.Now()
	t.obs.ObserveStage(t.kind, stage, now.Sub(t.start))
	t.start = now
}
