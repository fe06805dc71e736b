package debug

import (
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func fixedCapture(dir string) *ScreenshotCapture {
	sc := NewScreenshotCapture(dir, "horde")
	sc.now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }
	return sc
}

func TestFlipRows(t *testing.T) {
	// Two rows, one pixel wide: bottom row red, top row blue.
	pixels := []byte{
		255, 0, 0, 255,
		0, 0, 255, 255,
	}
	img, err := FlipRows(pixels, 1, 2)
	if err != nil {
		t.Fatalf("FlipRows failed: %v", err)
	}
	if r, _, b, _ := img.At(0, 0).RGBA(); r != 0 || b == 0 {
		t.Errorf("top pixel should be blue, got r=%d b=%d", r, b)
	}
	if r, _, b, _ := img.At(0, 1).RGBA(); r == 0 || b != 0 {
		t.Errorf("bottom pixel should be red, got r=%d b=%d", r, b)
	}
}

func TestFlipRowsRejectsBadSize(t *testing.T) {
	for _, tc := range []struct {
		name       string
		size, w, h int
	}{
		{"short", 7, 1, 2},
		{"zero width", 0, 0, 2},
		{"negative height", 4, 1, -1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := FlipRows(make([]byte, tc.size), tc.w, tc.h); !errors.Is(err, ErrPixelSize) {
				t.Errorf("expected ErrPixelSize, got %v", err)
			}
		})
	}
}

func TestGenerateFilename(t *testing.T) {
	want := filepath.Join("shots", "horde_2026-03-04_05-06-07.png")
	if got := fixedCapture("shots").GenerateFilename(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if got := fixedCapture("").GenerateFilename(); got != "horde_2026-03-04_05-06-07.png" {
		t.Errorf("unexpected filename without dir: %q", got)
	}
}

func TestCaptureFromPixels(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	sc := fixedCapture(dir)
	pixels := make([]byte, 3*2*4)

	first, err := sc.CaptureFromPixels(pixels, 3, 2)
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	second, err := sc.CaptureFromPixels(pixels, 3, 2)
	if err != nil {
		t.Fatalf("second capture failed: %v", err)
	}
	if first == second {
		t.Fatalf("captures in the same second share %q", first)
	}
	if want := filepath.Join(dir, "horde_2026-03-04_05-06-07_1.png"); second != want {
		t.Errorf("expected %q, got %q", want, second)
	}

	f, err := os.Open(first)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Errorf("expected 3x2 image, got %v", b)
	}
}

func TestCaptureFromPixelsRejectsBadSize(t *testing.T) {
	if _, err := fixedCapture(t.TempDir()).CaptureFromPixels([]byte{1, 2, 3}, 1, 1); !errors.Is(err, ErrPixelSize) {
		t.Errorf("expected ErrPixelSize, got %v", err)
	}
}
