package viewkit

import (
	"encoding/xml"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
)

// stateVersion is written to the root element of saved state files. A file
// with a different version still restores; the mismatch is only logged.
const stateVersion = "1.0"

// xmlElement is a generic XML element tree, the document model every
// serializable part of the viewer reads and writes.
type xmlElement struct {
	XMLName  xml.Name
	Attrs    []xml.Attr   `xml:",any,attr"`
	Children []xmlElement `xml:",any"`
}

func newElement(name string) xmlElement {
	return xmlElement{XMLName: xml.Name{Local: name}}
}

func (e *xmlElement) setAttr(name, value string) {
	e.Attrs = append(e.Attrs, xml.Attr{Name: xml.Name{Local: name}, Value: value})
}

func (e *xmlElement) setBoolAttr(name string, v bool) {
	e.setAttr(name, strconv.FormatBool(v))
}

func (e *xmlElement) setIntAttr(name string, v int) {
	e.setAttr(name, strconv.Itoa(v))
}

func (e *xmlElement) setFloatAttr(name string, v float64) {
	e.setAttr(name, strconv.FormatFloat(v, 'g', -1, 64))
}

func (e *xmlElement) addChild(c xmlElement) {
	e.Children = append(e.Children, c)
}

// attr returns the raw attribute value, if present.
func (e *xmlElement) attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// child returns the first child element with the given name.
func (e *xmlElement) child(name string) (*xmlElement, bool) {
	for i := range e.Children {
		if e.Children[i].XMLName.Local == name {
			return &e.Children[i], true
		}
	}
	return nil, false
}

// --- Tolerant attribute readers ---
//
// Restoring must survive hand-edited and truncated files: a missing
// attribute quietly keeps the default, a malformed one keeps the default
// and warns.

func boolAttr(e *xmlElement, name string, def bool) bool {
	s, ok := e.attr(name)
	if !ok {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		warnf("bad boolean %q for attribute %s of <%s>, using %v", s, name, e.XMLName.Local, def)
		return def
	}
	return v
}

func intAttr(e *xmlElement, name string, def int) int {
	s, ok := e.attr(name)
	if !ok {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		warnf("bad integer %q for attribute %s of <%s>, using %d", s, name, e.XMLName.Local, def)
		return def
	}
	return v
}

func floatAttr(e *xmlElement, name string, def float64) float64 {
	s, ok := e.attr(name)
	if !ok {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		warnf("bad number %q for attribute %s of <%s>, using %g", s, name, e.XMLName.Local, def)
		return def
	}
	return v
}

// colorElement writes a color as an element with red/green/blue attributes
// in 0..255, the way state files store the fore- and background colors.
func colorElement(name string, c Color) xmlElement {
	e := newElement(name)
	e.setIntAttr("red", int(c.R*255+0.5))
	e.setIntAttr("green", int(c.G*255+0.5))
	e.setIntAttr("blue", int(c.B*255+0.5))
	return e
}

func colorFromElement(e *xmlElement, def Color) Color {
	clampByte := func(v int) float64 {
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		return float64(v) / 255
	}
	return Color{
		R: clampByte(intAttr(e, "red", int(def.R*255+0.5))),
		G: clampByte(intAttr(e, "green", int(def.G*255+0.5))),
		B: clampByte(intAttr(e, "blue", int(def.B*255+0.5))),
		A: 1,
	}
}

func vecElement(name string, v Vec3) xmlElement {
	e := newElement(name)
	e.setFloatAttr("x", v.X)
	e.setFloatAttr("y", v.Y)
	e.setFloatAttr("z", v.Z)
	return e
}

func vecFromElement(e *xmlElement, def Vec3) Vec3 {
	return Vec3{
		X: floatAttr(e, "x", def.X),
		Y: floatAttr(e, "y", def.Y),
		Z: floatAttr(e, "z", def.Z),
	}
}

func quatElement(name string, q Quat) xmlElement {
	e := newElement(name)
	e.setFloatAttr("q0", q.X)
	e.setFloatAttr("q1", q.Y)
	e.setFloatAttr("q2", q.Z)
	e.setFloatAttr("q3", q.W)
	return e
}

func quatFromElement(e *xmlElement, def Quat) Quat {
	return Quat{
		X: floatAttr(e, "q0", def.X),
		Y: floatAttr(e, "q1", def.Y),
		Z: floatAttr(e, "q2", def.Z),
		W: floatAttr(e, "q3", def.W),
	}.Normalized()
}

// --- Frame serialization ---

// StateElement serializes the frame pose under the given element name.
func (f *Frame) StateElement(name string) xmlElement {
	e := newElement(name)
	e.addChild(vecElement("position", f.position))
	e.addChild(quatElement("orientation", f.orientation))
	return e
}

// InitFromState restores the frame pose, keeping the current values for
// anything missing.
func (f *Frame) InitFromState(e *xmlElement) {
	if pos, ok := e.child("position"); ok {
		f.position = vecFromElement(pos, f.position)
	}
	if o, ok := e.child("orientation"); ok {
		f.orientation = quatFromElement(o, f.orientation)
	}
}

// --- Camera serialization ---

// StateElement serializes the camera parameters, pose, and keyframe paths.
func (c *Camera) StateElement() xmlElement {
	e := newElement("Camera")
	e.setFloatAttr("fieldOfView", c.fieldOfView)
	e.setFloatAttr("zNearCoefficient", c.zNearCoefficient)
	e.setFloatAttr("zClippingCoefficient", c.zClippingCoefficient)
	e.setFloatAttr("sceneRadius", c.sceneRadius)
	e.setFloatAttr("flySpeed", c.flySpeed)
	e.addChild(vecElement("SceneCenter", c.sceneCenter))
	e.addChild(vecElement("RevolveAroundPoint", c.revolveAroundPoint))
	e.addChild(c.frame.StateElement("Frame"))
	for _, index := range c.PathIndexes() {
		pe := c.paths[index].stateElement()
		pe.setIntAttr("index", index)
		e.addChild(pe)
	}
	return e
}

// InitFromState restores the camera, replacing its keyframe paths with the
// saved ones.
func (c *Camera) InitFromState(e *xmlElement) {
	c.fieldOfView = floatAttr(e, "fieldOfView", c.fieldOfView)
	c.zNearCoefficient = floatAttr(e, "zNearCoefficient", c.zNearCoefficient)
	c.zClippingCoefficient = floatAttr(e, "zClippingCoefficient", c.zClippingCoefficient)
	radius := floatAttr(e, "sceneRadius", c.sceneRadius)
	if radius > 0 {
		c.sceneRadius = radius
	}
	c.flySpeed = floatAttr(e, "flySpeed", c.flySpeed)
	if sc, ok := e.child("SceneCenter"); ok {
		c.sceneCenter = vecFromElement(sc, c.sceneCenter)
	}
	if rap, ok := e.child("RevolveAroundPoint"); ok {
		c.revolveAroundPoint = vecFromElement(rap, c.revolveAroundPoint)
	} else {
		c.revolveAroundPoint = c.sceneCenter
	}
	if fe, ok := e.child("Frame"); ok {
		c.frame.Frame.InitFromState(fe)
	}

	for i := range c.paths {
		c.DeletePath(i)
	}
	for i := range e.Children {
		ch := &e.Children[i]
		if ch.XMLName.Local != "KeyFrameInterpolator" {
			continue
		}
		index := intAttr(ch, "index", 0)
		if index == 0 {
			continue
		}
		kfi := NewKeyFrameInterpolator(c.frame)
		kfi.SetChangedCallback(c.onPathChanged)
		kfi.initFromState(ch)
		c.paths[index] = kfi
	}
}

func (k *KeyFrameInterpolator) stateElement() xmlElement {
	e := newElement("KeyFrameInterpolator")
	e.setFloatAttr("speed", k.InterpolationSpeed)
	e.setBoolAttr("loop", k.LoopInterpolation)
	for _, kf := range k.keyFrames {
		ke := newElement("KeyFrame")
		ke.setFloatAttr("time", kf.time)
		ke.addChild(vecElement("position", kf.position))
		ke.addChild(quatElement("orientation", kf.orientation))
		e.addChild(ke)
	}
	return e
}

func (k *KeyFrameInterpolator) initFromState(e *xmlElement) {
	k.InterpolationSpeed = floatAttr(e, "speed", 1)
	k.LoopInterpolation = boolAttr(e, "loop", false)
	for i := range e.Children {
		ch := &e.Children[i]
		if ch.XMLName.Local != "KeyFrame" {
			continue
		}
		pos, orient := Vec3{}, QuatIdentity
		if p, ok := ch.child("position"); ok {
			pos = vecFromElement(p, pos)
		}
		if o, ok := ch.child("orientation"); ok {
			orient = quatFromElement(o, orient)
		}
		k.AddKeyFrameAtTime(pos, orient, floatAttr(ch, "time", 0))
	}
}

// --- Viewer serialization ---

// StateElement serializes the whole viewer state: colors, display flags,
// window geometry, camera, and manipulated frame. While the camera-edit
// display is active the camera's clipping coefficient is temporarily
// enlarged; the saved value is the pre-edit one.
func (v *Viewer) StateElement() xmlElement {
	root := newElement("Viewer")
	root.setAttr("version", stateVersion)

	state := newElement("State")
	state.addChild(colorElement("foregroundColor", v.foregroundColor))
	state.addChild(colorElement("backgroundColor", v.backgroundColor))
	state.setBoolAttr("stereo", v.stereo)
	state.setAttr("cameraMode", v.camera.Mode().String())
	root.addChild(state)

	display := newElement("Display")
	display.setBoolAttr("axisIsDrawn", v.axisIsDrawn)
	display.setBoolAttr("gridIsDrawn", v.gridIsDrawn)
	display.setBoolAttr("FPSIsDisplayed", v.fpsIsDisplayed)
	display.setBoolAttr("cameraIsEdited", v.cameraIsEdited)
	display.setBoolAttr("zBufferIsDisplayed", v.zBufferIsDisplayed)
	root.addChild(display)

	geometry := newElement("Geometry")
	geometry.setBoolAttr("fullScreen", v.fullScreen)
	if v.fullScreen {
		geometry.setIntAttr("prevPosX", v.prevPosX)
		geometry.setIntAttr("prevPosY", v.prevPosY)
	} else {
		geometry.setIntAttr("width", v.camera.ScreenWidth())
		geometry.setIntAttr("height", v.camera.ScreenHeight())
		geometry.setIntAttr("posX", v.posX)
		geometry.setIntAttr("posY", v.posY)
	}
	root.addChild(geometry)

	if v.cameraIsEdited {
		edited := v.camera.ZClippingCoefficient()
		v.camera.SetZClippingCoefficient(v.previousZClippingCoefficient)
		root.addChild(v.camera.StateElement())
		v.camera.SetZClippingCoefficient(edited)
	} else {
		root.addChild(v.camera.StateElement())
	}

	if v.frame != nil {
		root.addChild(v.frame.StateElement("ManipulatedFrame"))
	}

	return root
}

// InitFromState restores the viewer from a saved state tree. Missing
// sections and attributes keep their current values; unknown sections are
// skipped; a version mismatch is only logged.
func (v *Viewer) InitFromState(root *xmlElement) {
	if version, ok := root.attr("version"); ok && version != stateVersion {
		warnf("state file version %s, expected %s; restoring anyway", version, stateVersion)
	}

	if state, ok := root.child("State"); ok {
		if fg, ok := state.child("foregroundColor"); ok {
			v.foregroundColor = colorFromElement(fg, v.foregroundColor)
		}
		if bg, ok := state.child("backgroundColor"); ok {
			v.backgroundColor = colorFromElement(bg, v.backgroundColor)
		}
		v.stereo = boolAttr(state, "stereo", v.stereo)
		mode, _ := state.attr("cameraMode")
		switch mode {
		case "fly":
			v.camera.SetMode(CameraModeFly)
		case "revolve", "":
			v.camera.SetMode(CameraModeRevolve)
		default:
			warnf("unknown camera mode %q, using revolve", mode)
			v.camera.SetMode(CameraModeRevolve)
		}
		v.setDefaultMouseBindings()
	}

	if display, ok := root.child("Display"); ok {
		v.axisIsDrawn = boolAttr(display, "axisIsDrawn", false)
		v.gridIsDrawn = boolAttr(display, "gridIsDrawn", false)
		v.fpsIsDisplayed = boolAttr(display, "FPSIsDisplayed", false)
		v.zBufferIsDisplayed = boolAttr(display, "zBufferIsDisplayed", false)
		v.SetCameraIsEdited(boolAttr(display, "cameraIsEdited", false))
	}

	if geometry, ok := root.child("Geometry"); ok {
		fullScreen := boolAttr(geometry, "fullScreen", false)
		v.SetFullScreen(fullScreen)
		if fullScreen {
			// The saved position wins over the one SetFullScreen recorded.
			v.prevPosX = intAttr(geometry, "prevPosX", 0)
			v.prevPosY = intAttr(geometry, "prevPosY", 0)
		} else {
			w := intAttr(geometry, "width", 600)
			h := intAttr(geometry, "height", 400)
			v.camera.SetScreenWidthAndHeight(w, h)
			v.posX = intAttr(geometry, "posX", 0)
			v.posY = intAttr(geometry, "posY", 0)
		}
	}

	if cam, ok := root.child("Camera"); ok {
		v.camera.InitFromState(cam)
		v.camera.setPathChangedCallback(v.markDirty)
	}

	if v.frame != nil {
		if fe, ok := root.child("ManipulatedFrame"); ok {
			v.frame.Frame.InitFromState(fe)
		}
	}

	v.needsRedraw = true
}

// StateFileName returns the file the viewer state is saved to.
func (v *Viewer) StateFileName() string { return v.stateFileName }

// SetStateFileName changes the state file path. An empty name disables
// saving and restoring.
func (v *Viewer) SetStateFileName(name string) { v.stateFileName = name }

// SaveStateToFile writes the viewer state to StateFileName, creating the
// parent directory when needed.
func (v *Viewer) SaveStateToFile() error {
	name := v.stateFileName
	if name == "" {
		return nil
	}
	if info, err := os.Stat(name); err == nil && info.IsDir() {
		return fmt.Errorf("save state: %s is a directory", name)
	}
	if dir := filepath.Dir(name); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("save state: %w", err)
		}
	}

	root := v.StateElement()
	data, err := xml.MarshalIndent(root, "", " ")
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	data = append([]byte(xml.Header), data...)
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// RestoreStateFromFile reads the state file and restores the viewer from
// it. A missing file is not an error: the viewer keeps its defaults and
// false is returned. An unreadable or unparsable file returns an error and
// posts an on-screen message.
func (v *Viewer) RestoreStateFromFile() (bool, error) {
	name := v.stateFileName
	if name == "" {
		return false, nil
	}
	data, err := os.ReadFile(name)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		v.DisplayMessage("Open file error, unable to restore state")
		return false, fmt.Errorf("restore state: %w", err)
	}
	var root xmlElement
	if err := xml.Unmarshal(data, &root); err != nil {
		v.DisplayMessage("Open file error, unable to restore state")
		return false, fmt.Errorf("restore state: %w", err)
	}
	v.InitFromState(&root)
	return true, nil
}

// --- Registry ---

// ViewerRegistry tracks the live viewers of an application so their state
// can be saved together on exit. The application owns the registry; there
// is no process-wide one.
type ViewerRegistry struct {
	viewers []*Viewer
}

// Add registers a viewer. Registering twice is a no-op.
func (r *ViewerRegistry) Add(v *Viewer) {
	for _, x := range r.viewers {
		if x == v {
			return
		}
	}
	r.viewers = append(r.viewers, v)
}

// Remove unregisters a viewer.
func (r *ViewerRegistry) Remove(v *Viewer) {
	for i, x := range r.viewers {
		if x == v {
			r.viewers = append(r.viewers[:i], r.viewers[i+1:]...)
			return
		}
	}
}

// Viewers returns the registered viewers in registration order.
func (r *ViewerRegistry) Viewers() []*Viewer { return r.viewers }

// SaveAll saves every registered viewer's state, returning the first error
// after attempting all of them.
func (r *ViewerRegistry) SaveAll() error {
	var first error
	for _, v := range r.viewers {
		if err := v.SaveStateToFile(); err != nil {
			warnf("%v", err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}
