package viewkit

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

// --- Sizing ---

func TestNextPowerOfTwo(t *testing.T) {
	cases := []struct {
		n, want int
	}{
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 4},
		{600, 1024},
		{1024, 1024},
		{1025, 2048},
	}
	for _, c := range cases {
		if got := nextPowerOfTwo(c.n); got != c.want {
			t.Errorf("nextPowerOfTwo(%d) = %d, want %d", c.n, got, c.want)
		}
	}
}

func TestCaptureEmptyBeforeFirstGrab(t *testing.T) {
	var b BufferCapture
	if b.Texture() != nil {
		t.Error("texture should be nil before the first grab")
	}
	if b.MaxU() != 0 || b.MaxV() != 0 {
		t.Errorf("MaxU, MaxV = %v, %v, want 0, 0", b.MaxU(), b.MaxV())
	}
}

// --- Grabbing ---

func TestGrabAllocatesPowerOfTwoTexture(t *testing.T) {
	var b BufferCapture
	src := ebiten.NewImage(600, 400)
	defer src.Deallocate()

	b.Grab(src, CaptureColor)

	tex := b.Texture()
	if tex == nil {
		t.Fatal("grab did not allocate a texture")
	}
	if w, h := tex.Bounds().Dx(), tex.Bounds().Dy(); w != 1024 || h != 512 {
		t.Errorf("texture = %dx%d, want 1024x512", w, h)
	}
	if b.Width() != 600 || b.Height() != 400 {
		t.Errorf("source size = %dx%d, want 600x400", b.Width(), b.Height())
	}
	assertNear(t, "max u", b.MaxU(), 600.0/1024.0)
	assertNear(t, "max v", b.MaxV(), 400.0/512.0)
}

func TestGrabReusesTextureForSameSize(t *testing.T) {
	var b BufferCapture
	src := ebiten.NewImage(300, 200)
	defer src.Deallocate()

	b.Grab(src, CaptureColor)
	first := b.Texture()
	b.Grab(src, CaptureColor)

	if b.Texture() != first {
		t.Error("same-size grab should reuse the texture")
	}
}

func TestGrabReallocatesOnSizeChange(t *testing.T) {
	var b BufferCapture
	small := ebiten.NewImage(100, 100)
	defer small.Deallocate()
	large := ebiten.NewImage(500, 100)
	defer large.Deallocate()

	b.Grab(small, CaptureColor)
	first := b.Texture()
	b.Grab(large, CaptureColor)

	if b.Texture() == first {
		t.Error("larger source should reallocate the texture")
	}
	if w := b.Texture().Bounds().Dx(); w != 512 {
		t.Errorf("texture width = %d, want 512", w)
	}
}

func TestGrabReallocatesOnFormatChange(t *testing.T) {
	var b BufferCapture
	src := ebiten.NewImage(64, 64)
	defer src.Deallocate()

	b.Grab(src, CaptureColor)
	first := b.Texture()
	b.Grab(src, CaptureDepth)

	if b.Texture() == first {
		t.Error("format change should reallocate the texture")
	}
	if b.Format() != CaptureDepth {
		t.Errorf("format = %v, want depth", b.Format())
	}
}

func TestGrabNilSourceIsNoOp(t *testing.T) {
	var b BufferCapture
	b.Grab(nil, CaptureColor)
	if b.Texture() != nil {
		t.Error("nil source should not allocate")
	}
}
