package viewkit

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	// revolveHintDuration is how long the revolve-point crosshair stays
	// visible after the revolve point changes.
	revolveHintDuration = 2 * time.Second
	// fpsSampleFrames is how many frames the rate is averaged over before
	// the display updates.
	fpsSampleFrames = 20
	// crosshairSize is the half extent of the revolve-point cross, pixels.
	crosshairSize = 10
	// gridDivisions is the number of cells per side of the grid overlay.
	gridDivisions = 10
)

var (
	hintColor   = color.RGBA{R: 0xcc, G: 0x33, B: 0x33, A: 0xff}
	gridColor   = color.RGBA{R: 0x66, G: 0x66, B: 0x66, A: 0xff}
	axisXColor  = color.RGBA{R: 0xcc, G: 0x22, B: 0x22, A: 0xff}
	axisYColor  = color.RGBA{R: 0x22, G: 0xcc, B: 0x22, A: 0xff}
	axisZColor  = color.RGBA{R: 0x33, G: 0x33, B: 0xcc, A: 0xff}
	pathColor   = color.RGBA{R: 0xcc, G: 0xcc, B: 0x33, A: 0xff}
	regionColor = color.RGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff}
)

// postDraw renders every overlay on top of the host's scene. It only reads
// viewer state and draws to the screen; flags are never mutated here, so
// drawing twice (stereo) is safe. The layers stack in a fixed order: camera
// paths, revolve-point crosshair, screen-rotate guide, zoom-region
// rectangle, grid, axis, frame rate, message, depth view.
func (v *Viewer) postDraw(screen *ebiten.Image) {
	if v.cameraIsEdited {
		v.drawCameraPaths(screen)
	}
	if v.now().Before(v.revolveHintUntil) {
		v.drawRevolveHint(screen)
	}
	v.drawActionHints(screen)
	if v.gridIsDrawn {
		v.drawGrid(screen)
	}
	if v.axisIsDrawn {
		v.drawAxis(screen)
	}
	if v.textIsEnabled {
		if v.fpsIsDisplayed {
			ebitenutil.DebugPrintAt(screen, formatFPS(v.fps), 10, 5)
		}
		if v.message != "" && v.now().Before(v.messageUntil) {
			ebitenutil.DebugPrintAt(screen, v.message, 10, v.camera.ScreenHeight()-20)
		}
		if v.helpIsDisplayed {
			ebitenutil.DebugPrintAt(screen, v.HelpString(), 10, 25)
		}
	}
	if v.zBufferIsDisplayed {
		v.drawZBuffer(screen)
	}
}

// formatFPS renders a frame rate the way the FPS display shows it: one
// decimal below 10 Hz, none above.
func formatFPS(fps float64) string {
	if fps < 10.0 {
		return fmt.Sprintf("%.1fHz", fps)
	}
	return fmt.Sprintf("%.0fHz", fps)
}

// updateFPS recomputes the averaged frame rate once every fpsSampleFrames
// draws.
func (v *Viewer) updateFPS() {
	v.fpsFrameCount++
	if v.fpsFrameCount < fpsSampleFrames {
		return
	}
	now := v.now()
	if !v.fpsLastTime.IsZero() {
		elapsed := now.Sub(v.fpsLastTime).Seconds()
		if elapsed > 0 {
			v.fps = float64(v.fpsFrameCount) / elapsed
		}
	}
	v.fpsLastTime = now
	v.fpsFrameCount = 0
}

// projectVisible projects a world point to the screen, reporting whether it
// lies in front of the camera.
func (v *Viewer) projectVisible(p Vec3) (x, y float64, ok bool) {
	if v.camera.Frame().CoordinatesOf(p).Z > -1e-9 {
		return 0, 0, false
	}
	x, y, _ = v.camera.ProjectedCoordinatesOf(p)
	return x, y, true
}

// strokeWorldLine draws the segment between two world points, skipping
// segments that reach behind the camera.
func (v *Viewer) strokeWorldLine(screen *ebiten.Image, a, b Vec3, clr color.Color) {
	x0, y0, ok0 := v.projectVisible(a)
	x1, y1, ok1 := v.projectVisible(b)
	if !ok0 || !ok1 {
		return
	}
	vector.StrokeLine(screen, float32(x0), float32(y0), float32(x1), float32(y1), 1, clr, true)
}

func (v *Viewer) drawCameraPaths(screen *ebiten.Image) {
	for _, index := range v.camera.PathIndexes() {
		kfi := v.camera.Path(index)
		for i := 1; i < kfi.NumberOfKeyFrames(); i++ {
			v.strokeWorldLine(screen, kfi.keyFrames[i-1].position, kfi.keyFrames[i].position, pathColor)
		}
		if kfi.NumberOfKeyFrames() > 0 {
			if x, y, ok := v.projectVisible(kfi.keyFrames[0].position); ok {
				ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%d", index), int(x), int(y))
			}
		}
	}
}

func (v *Viewer) drawRevolveHint(screen *ebiten.Image) {
	x, y, ok := v.projectVisible(v.camera.RevolveAroundPoint())
	if !ok {
		return
	}
	vector.StrokeLine(screen, float32(x-crosshairSize), float32(y), float32(x+crosshairSize), float32(y), 1, hintColor, true)
	vector.StrokeLine(screen, float32(x), float32(y-crosshairSize), float32(x), float32(y+crosshairSize), 1, hintColor, true)
}

// drawActionHints draws the guides of the drag in progress: the
// screen-rotate line from the revolve point to the cursor, and the
// zoom-region rubber band.
func (v *Viewer) drawActionHints(screen *ebiten.Image) {
	if v.draggedFrame == nil {
		return
	}
	switch v.draggedFrame.Action() {
	case ActionScreenRotate:
		cx, cy, ok := v.projectVisible(v.camera.RevolveAroundPoint())
		if !ok {
			return
		}
		px, py := v.draggedFrame.PrevPosition()
		vector.StrokeLine(screen, float32(cx), float32(cy), float32(px), float32(py), 1, hintColor, true)
	case ActionZoomOnRegion:
		x0, y0 := v.draggedFrame.PressPosition()
		x1, y1 := v.draggedFrame.PrevPosition()
		if x1 < x0 {
			x0, x1 = x1, x0
		}
		if y1 < y0 {
			y0, y1 = y1, y0
		}
		vector.StrokeRect(screen, float32(x0), float32(y0), float32(x1-x0), float32(y1-y0), 1, regionColor, true)
	}
}

// drawGrid draws the XZ-plane grid centered on the scene center, sized by
// the scene radius.
func (v *Viewer) drawGrid(screen *ebiten.Image) {
	r := v.camera.SceneRadius()
	c := v.camera.SceneCenter()
	step := 2 * r / gridDivisions
	for i := 0; i <= gridDivisions; i++ {
		o := -r + float64(i)*step
		v.strokeWorldLine(screen, c.Add(Vec3{o, 0, -r}), c.Add(Vec3{o, 0, r}), gridColor)
		v.strokeWorldLine(screen, c.Add(Vec3{-r, 0, o}), c.Add(Vec3{r, 0, o}), gridColor)
	}
}

// drawAxis draws the world axes from the origin, each one scene radius
// long, labeled.
func (v *Viewer) drawAxis(screen *ebiten.Image) {
	r := v.camera.SceneRadius()
	origin := Vec3{}
	ends := []struct {
		p     Vec3
		clr   color.Color
		label string
	}{
		{Vec3{r, 0, 0}, axisXColor, "X"},
		{Vec3{0, r, 0}, axisYColor, "Y"},
		{Vec3{0, 0, r}, axisZColor, "Z"},
	}
	for _, e := range ends {
		v.strokeWorldLine(screen, origin, e.p, e.clr)
		if x, y, ok := v.projectVisible(e.p); ok {
			ebitenutil.DebugPrintAt(screen, e.label, int(x)+2, int(y)+2)
		}
	}
}

// drawZBuffer paints the depth view over the scene. It needs a host that
// provides depth; without one the mode turns itself off with a warning.
func (v *Viewer) drawZBuffer(screen *ebiten.Image) {
	provider, ok := v.scene.(DepthImageProvider)
	if !ok {
		if !v.zBufferWarned {
			warnf("z-buffer display needs a DepthImageProvider host, disabling")
			v.zBufferWarned = true
		}
		v.zBufferIsDisplayed = false
		return
	}
	img := provider.DepthImage()
	if img == nil {
		return
	}
	v.capture.Grab(img, CaptureDepth)
	tex := v.capture.Texture()
	if tex == nil {
		return
	}
	// The capture texture is padded to powers of two; only its top-left
	// Width x Height sub-rectangle holds the depth image.
	w, h := v.capture.Width(), v.capture.Height()
	sub := tex.SubImage(image.Rect(0, 0, w, h)).(*ebiten.Image)
	var op ebiten.DrawImageOptions
	if w > 0 && h > 0 {
		sx := float64(v.camera.ScreenWidth()) / float64(w)
		sy := float64(v.camera.ScreenHeight()) / float64(h)
		s := math.Min(sx, sy)
		op.GeoM.Scale(s, s)
	}
	screen.DrawImage(sub, &op)
}
