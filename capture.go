package viewkit

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// CaptureFormat selects what a BufferCapture copies from the host.
type CaptureFormat uint8

const (
	// CaptureColor grabs the rendered color buffer.
	CaptureColor CaptureFormat = iota
	// CaptureDepth grabs the host-provided depth image.
	CaptureDepth
)

// BufferCapture copies a rendered buffer into a cached offscreen texture
// whose sides are powers of two, at least as large as the source. The
// texture is reused across grabs and reallocated only when the source size
// or the format changes, so per-frame captures do not allocate.
//
// Because the texture is generally larger than the source, only the
// [0, MaxU] x [0, MaxV] sub-rectangle holds the capture.
type BufferCapture struct {
	texture *ebiten.Image
	format  CaptureFormat

	srcWidth  int
	srcHeight int
}

// Texture returns the cached texture, or nil before the first grab. The
// capture occupies its top-left sub-rectangle.
func (b *BufferCapture) Texture() *ebiten.Image { return b.texture }

// Format returns the format of the last grab.
func (b *BufferCapture) Format() CaptureFormat { return b.format }

// Width returns the width in pixels of the last grabbed source.
func (b *BufferCapture) Width() int { return b.srcWidth }

// Height returns the height in pixels of the last grabbed source.
func (b *BufferCapture) Height() int { return b.srcHeight }

// MaxU returns the U texture coordinate of the capture's right edge.
func (b *BufferCapture) MaxU() float64 {
	if b.texture == nil {
		return 0
	}
	return float64(b.srcWidth) / float64(b.texture.Bounds().Dx())
}

// MaxV returns the V texture coordinate of the capture's bottom edge.
func (b *BufferCapture) MaxV() float64 {
	if b.texture == nil {
		return 0
	}
	return float64(b.srcHeight) / float64(b.texture.Bounds().Dy())
}

// Grab copies src into the cached texture, reallocating it when the source
// dimensions or the format changed since the previous grab.
func (b *BufferCapture) Grab(src *ebiten.Image, format CaptureFormat) {
	if src == nil {
		return
	}
	w := src.Bounds().Dx()
	h := src.Bounds().Dy()
	if b.texture == nil || w != b.srcWidth || h != b.srcHeight || format != b.format {
		if b.texture != nil {
			b.texture.Deallocate()
		}
		b.texture = ebiten.NewImage(nextPowerOfTwo(w), nextPowerOfTwo(h))
		b.srcWidth = w
		b.srcHeight = h
		b.format = format
	}
	b.texture.Clear()
	b.texture.DrawImage(src, nil)
}

// nextPowerOfTwo returns the smallest power of two >= n (and >= 1).
func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
