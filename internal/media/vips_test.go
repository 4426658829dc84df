package media

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"testing"
)

// NOTE: govips doesn't support stopping and restarting vips in the same process.
// Once vips.Shutdown() is called, vips.Startup() cannot be called again.
// Tests that need vips run first, shutdown tests run last.

func TestIsVipsAvailable(t *testing.T) {
	available := IsVipsAvailable()
	t.Logf("libvips available: %v", available)
}

func TestInitVipsIdempotency(t *testing.T) {
	if err := InitVips(); err != nil {
		t.Skipf("libvips not available in test environment: %v", err)
	}

	if err := InitVips(); err != nil {
		t.Errorf("Second InitVips call failed: %v", err)
	}

	if !IsVipsAvailable() {
		t.Error("IsVipsAvailable should return true after successful InitVips")
	}
}

func TestDecodeWithVips(t *testing.T) {
	if err := InitVips(); err != nil || !IsVipsAvailable() {
		t.Skip("libvips not available in test environment")
	}

	tests := []struct {
		name   string
		width  int
		height int
	}{
		{"Landscape", 320, 200},
		{"Portrait", 120, 300},
		{"Square", 64, 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewRGBA(image.Rect(0, 0, tt.width, tt.height))
			draw.Draw(img, img.Bounds(), &image.Uniform{color.RGBA{128, 64, 32, 255}}, image.Point{}, draw.Src)
			var buf bytes.Buffer
			if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
				t.Fatalf("Failed to encode test image: %v", err)
			}

			result, err := decodeWithVips(buf.Bytes())
			if err != nil {
				t.Fatalf("decodeWithVips failed: %v", err)
			}

			b := result.Bounds()
			if b.Dx() != tt.width || b.Dy() != tt.height {
				t.Errorf("decoded %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.width, tt.height)
			}
		})
	}
}

func TestDecodeWithVipsErrors(t *testing.T) {
	if err := InitVips(); err != nil || !IsVipsAvailable() {
		t.Skip("libvips not available in test environment")
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"Garbage", []byte("definitely not an image")},
		{"Truncated JPEG header", []byte{0xFF, 0xD8, 0xFF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := decodeWithVips(tt.data); err == nil {
				t.Error("Expected error for invalid data, got nil")
			}
		})
	}
}

func TestVipsInitializationConcurrency(t *testing.T) {
	if IsVipsAvailable() {
		t.Skip("Vips already initialized, cannot test concurrent initialization")
	}

	done := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func() {
			_ = InitVips()
			done <- true
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	_ = IsVipsAvailable()
}

// Tests that interact with shutdown should run last to avoid breaking other tests
func TestDecodeWithVipsNotAvailable(t *testing.T) {
	wasAvailable := IsVipsAvailable()
	if wasAvailable {
		ShutdownVips()
	}

	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}

	if _, err := decodeWithVips(buf.Bytes()); err == nil {
		t.Error("Expected error when vips not available, got nil")
	}

	if wasAvailable {
		t.Log("Warning: vips was shutdown and cannot be restarted in this test run")
	}
}

func TestShutdownVips(t *testing.T) {
	ShutdownVips()
	ShutdownVips()

	if IsVipsAvailable() {
		t.Error("After ShutdownVips, IsVipsAvailable should return false")
	}
}

func BenchmarkIsVipsAvailable(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = IsVipsAvailable()
	}
}
