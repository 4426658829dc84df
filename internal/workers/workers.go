package workers

import (
	"os"
	"runtime"
	"strconv"

	"media-derivatives/internal/mediatypes"
)

// OverrideEnv names the environment variable that fixes the worker count.
const OverrideEnv = "WORKERS"

// Multipliers per job kind, in workers per available CPU.
const (
	ImageMultiplier = 1.0
	VideoMultiplier = 1.5
)

// Count returns the number of workers for a task with the given per-CPU
// multiplier, capped at limit (0 for no cap). WORKERS overrides the
// computed value.
func Count(multiplier float64, limit int) int {
	if override := os.Getenv(OverrideEnv); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			return capAt(count, limit)
		}
	}

	// GOMAXPROCS is automatically set to container CPU limit in Go 1.19+
	workers := int(float64(runtime.GOMAXPROCS(0)) * multiplier)
	if workers < 1 {
		workers = 1
	}
	return capAt(workers, limit)
}

func capAt(n, limit int) int {
	if limit > 0 && n > limit {
		return limit
	}
	return n
}

// ForKind returns the worker count for derivations of the given media kind.
// Unknown kinds are treated as images.
func ForKind(kind mediatypes.FileType, limit int) int {
	if kind == mediatypes.FileTypeVideo {
		return Count(VideoMultiplier, limit)
	}
	return Count(ImageMultiplier, limit)
}

// ForMixed returns the worker count for a queue holding both kinds.
func ForMixed(limit int) int {
	return Count((ImageMultiplier+VideoMultiplier)/2, limit)
}
