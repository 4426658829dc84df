package workers

import (
	"runtime"
	"testing"

	"media-derivatives/internal/mediatypes"
)

func TestCount(t *testing.T) {
	t.Setenv(OverrideEnv, "")

	availableCPU := runtime.GOMAXPROCS(0)

	tests := []struct {
		name       string
		multiplier float64
		limit      int
		minExpect  int
		maxExpect  int
	}{
		{"CPU-bound (1.0x)", 1.0, 0, availableCPU, availableCPU},
		{"Subprocess-bound (1.5x)", 1.5, 0, 1, int(float64(availableCPU) * 1.5)},
		{"Limit lower than calculated", 2.0, 2, 1, 2},
		{"Very low multiplier", 0.01, 0, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Count(tt.multiplier, tt.limit)
			if got < tt.minExpect || got > tt.maxExpect {
				t.Errorf("Count(%v, %d) = %d, expected in [%d, %d]", tt.multiplier, tt.limit, got, tt.minExpect, tt.maxExpect)
			}
		})
	}
}

func TestCountOverride(t *testing.T) {
	tests := []struct {
		name     string
		override string
		limit    int
		want     int
	}{
		{"valid override", "7", 0, 7},
		{"override capped by limit", "50", 10, 10},
		{"zero is ignored", "0", 0, runtime.GOMAXPROCS(0)},
		{"negative is ignored", "-3", 0, runtime.GOMAXPROCS(0)},
		{"garbage is ignored", "many", 0, runtime.GOMAXPROCS(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(OverrideEnv, tt.override)
			if got := Count(1.0, tt.limit); got != tt.want {
				t.Errorf("Count with %s=%q = %d, want %d", OverrideEnv, tt.override, got, tt.want)
			}
		})
	}
}

func TestForKind(t *testing.T) {
	t.Setenv(OverrideEnv, "")

	images := ForKind(mediatypes.FileTypeImage, 0)
	videos := ForKind(mediatypes.FileTypeVideo, 0)
	other := ForKind(mediatypes.FileTypeOther, 0)

	if images != runtime.GOMAXPROCS(0) {
		t.Errorf("ForKind(image) = %d, want %d", images, runtime.GOMAXPROCS(0))
	}
	if videos < images {
		t.Errorf("ForKind(video) = %d, want >= image count %d", videos, images)
	}
	if other != images {
		t.Errorf("ForKind(other) = %d, want image count %d", other, images)
	}
	if got := ForKind(mediatypes.FileTypeVideo, 1); got != 1 {
		t.Errorf("ForKind(video, 1) = %d, want 1", got)
	}
}

func TestForMixed(t *testing.T) {
	t.Setenv(OverrideEnv, "")

	got := ForMixed(0)
	if got < ForKind(mediatypes.FileTypeImage, 0) || got > ForKind(mediatypes.FileTypeVideo, 0) {
		t.Errorf("ForMixed() = %d, want between image and video counts", got)
	}
}

func BenchmarkCount(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = Count(1.5, 16)
	}
}
