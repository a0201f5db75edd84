package viewkit

// hitWords is the size one recorded hit occupies in the selection buffer,
// mirroring a name/min-depth/max-depth/count record.
const hitWords = 4

// selectionHit is one object reported during the name-draw pass.
type selectionHit struct {
	name  int
	depth float64
}

// SetSelectRegionWidth sets the width in pixels of the pick region centered
// on the selection pixel. Default 3.
func (v *Viewer) SetSelectRegionWidth(w int) {
	if w < 1 {
		w = 1
	}
	v.selectRegionWidth = w
}

// SetSelectRegionHeight sets the height in pixels of the pick region.
// Default 3.
func (v *Viewer) SetSelectRegionHeight(h int) {
	if h < 1 {
		h = 1
	}
	v.selectRegionHeight = h
}

// SelectRegionWidth returns the pick region width in pixels.
func (v *Viewer) SelectRegionWidth() int { return v.selectRegionWidth }

// SelectRegionHeight returns the pick region height in pixels.
func (v *Viewer) SelectRegionHeight() int { return v.selectRegionHeight }

// SetSelectBufferSize sets the hit buffer capacity in words; each hit takes
// four. Hits recorded past the capacity are silently dropped, so crowded
// scenes may resolve to a nearer-but-not-nearest object unless the buffer
// is enlarged. Default 4000 words (one thousand hits).
func (v *Viewer) SetSelectBufferSize(words int) {
	if words < hitWords {
		words = hitWords
	}
	v.selectBufferSize = words
	v.selectHits = nil
}

// SelectBufferSize returns the hit buffer capacity in words.
func (v *Viewer) SelectBufferSize() int { return v.selectBufferSize }

// SelectedName returns the name resolved by the last selection, or -1 when
// it hit nothing.
func (v *Viewer) SelectedName() int { return v.selectedName }

// SetSelectedName overrides the selection result. Useful for hosts that
// run their own picking.
func (v *Viewer) SetSelectedName(name int) { v.selectedName = name }

// SelectRegion returns the pick region of the selection in progress,
// centered on the selection pixel.
func (v *Viewer) SelectRegion() Rect { return v.selectRegion }

// BeginSelection opens the selection protocol at the given pixel: the hit
// buffer is cleared and the pick region recorded. The host's name-draw pass
// then reports candidates with RecordHit.
func (v *Viewer) BeginSelection(x, y int) {
	v.selecting = true
	v.selectHits = v.selectHits[:0]
	v.selectRegion = Rect{
		X:      float64(x) - float64(v.selectRegionWidth)/2,
		Y:      float64(y) - float64(v.selectRegionHeight)/2,
		Width:  float64(v.selectRegionWidth),
		Height: float64(v.selectRegionHeight),
	}
}

// RecordHit reports an object crossing the pick region, with its nearest
// depth in [0, 1]. Only valid between BeginSelection and EndSelection;
// hits beyond the buffer capacity are silently dropped.
func (v *Viewer) RecordHit(name int, depth float64) {
	if !v.selecting {
		return
	}
	if (len(v.selectHits)+1)*hitWords > v.selectBufferSize {
		return
	}
	v.selectHits = append(v.selectHits, selectionHit{name: name, depth: depth})
}

// EndSelection closes the protocol and resolves the recorded hits to the
// one nearest the camera. The scan keeps the first hit with a strictly
// smaller depth, so among equally deep hits the earliest reported wins.
// No hits resolve to -1.
func (v *Viewer) EndSelection() {
	v.selecting = false
	v.selectedName = -1
	best := 0.0
	for i, h := range v.selectHits {
		if i == 0 || h.depth < best {
			best = h.depth
			v.selectedName = h.name
		}
	}
}

// Select runs the whole selection protocol at a pixel: BeginSelection, the
// host's name-draw pass, EndSelection, then the PostSelection callback.
// Hosts that do not implement NamesDrawer resolve every selection to -1.
func (v *Viewer) Select(x, y int) {
	v.BeginSelection(x, y)
	if nd, ok := v.scene.(NamesDrawer); ok {
		nd.DrawWithNames(v)
	}
	v.EndSelection()
	if v.postSelection != nil {
		v.postSelection(x, y)
	}
}

// SetPostSelectionFunc registers a callback run after every Select with the
// selection pixel. SelectedName is already resolved when it runs.
func (v *Viewer) SetPostSelectionFunc(fn func(x, y int)) {
	v.postSelection = fn
}
