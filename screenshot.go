package viewkit

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
)

// QueueScreenshot queues a labeled screenshot of the viewer, captured at the
// end of the current frame's Draw call and written to ScreenshotDir as a
// timestamped PNG. Safe to call from Update or Draw; the screenshot shortcut
// queues one with the label "viewer".
func (v *Viewer) QueueScreenshot(label string) {
	v.screenshotQueue = append(v.screenshotQueue, label)
}

// flushScreenshots writes one PNG per queued label from the frame that was
// just drawn. Called at the end of Viewer.Draw, after the overlays, so a
// screenshot shows exactly what the user saw.
func (v *Viewer) flushScreenshots(screen *ebiten.Image) {
	if len(v.screenshotQueue) == 0 {
		return
	}
	queue := v.screenshotQueue
	v.screenshotQueue = v.screenshotQueue[:0]

	if err := os.MkdirAll(v.ScreenshotDir, 0o755); err != nil {
		warnf("screenshot: mkdir %s: %v", v.ScreenshotDir, err)
		return
	}

	img := frameImage(screen)
	stamp := v.now().Format("20060102_150405")

	saved := 0
	for _, label := range queue {
		name := fmt.Sprintf("%s_%s.png", stamp, screenshotName(label))
		if err := writePNG(filepath.Join(v.ScreenshotDir, name), img); err != nil {
			warnf("screenshot: %v", err)
			continue
		}
		saved++
	}
	if saved > 0 {
		v.DisplayMessage("Screenshot saved")
	}
}

// frameImage copies the rendered frame into a CPU-side image, converting
// ebiten's premultiplied RGBA to the straight alpha PNG expects.
func frameImage(screen *ebiten.Image) *image.NRGBA {
	bounds := screen.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels := make([]byte, 4*w*h)
	screen.ReadPixels(pixels)

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(pixels); i += 4 {
		r, g, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = a
	}
	return img
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img *image.NRGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// screenshotName maps a label to a filename-safe fragment. Blank labels get
// the default "viewer".
func screenshotName(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "viewer"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
