package viewkit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// KeyboardAction is a viewer behavior that can be bound to a key shortcut.
type KeyboardAction uint8

const (
	KeyActionDrawAxis         KeyboardAction = iota // toggles the world axis overlay
	KeyActionDrawGrid                               // toggles the grid overlay
	KeyActionDisplayFPS                             // toggles the frame rate display
	KeyActionDisplayZBuffer                         // toggles the depth buffer view
	KeyActionEnableText                             // toggles all on-screen text
	KeyActionExitViewer                             // saves the state and quits
	KeyActionSaveScreenshot                         // queues a screenshot
	KeyActionCameraMode                             // toggles revolve and fly mode
	KeyActionFullScreen                             // toggles full screen
	KeyActionStereo                                 // toggles the stereo flag
	KeyActionAnimation                              // starts or stops the animation loop
	KeyActionHelp                                   // toggles the help overlay
	KeyActionEditCamera                             // toggles the camera-edit display
	KeyActionMoveCameraLeft                         // nudges the camera left
	KeyActionMoveCameraRight                        // nudges the camera right
	KeyActionMoveCameraUp                           // nudges the camera up
	KeyActionMoveCameraDown                         // nudges the camera down
	KeyActionIncreaseFlySpeed                       // fly speed x1.5
	KeyActionDecreaseFlySpeed                       // fly speed /1.5
)

// KeyCombo is a key plus the modifier state required with it.
type KeyCombo struct {
	Key  ebiten.Key
	Mods KeyModifiers
}

// SetShortcut binds a keyboard action to a key combo, replacing any
// previous binding of that action.
func (v *Viewer) SetShortcut(action KeyboardAction, key ebiten.Key, mods KeyModifiers) {
	v.shortcuts[action] = KeyCombo{Key: key, Mods: mods}
}

// ClearShortcut removes the key binding of an action.
func (v *Viewer) ClearShortcut(action KeyboardAction) {
	delete(v.shortcuts, action)
}

// Shortcut returns the key combo bound to an action, if any.
func (v *Viewer) Shortcut(action KeyboardAction) (KeyCombo, bool) {
	kc, ok := v.shortcuts[action]
	return kc, ok
}

// SetPathKey binds a key to a camera path index. Index 0 removes the
// binding for that key.
func (v *Viewer) SetPathKey(key ebiten.Key, index int) {
	if index == 0 {
		delete(v.pathKeys, key)
		return
	}
	v.pathKeys[key] = index
}

// SetPlayPathModifiers sets the modifier state that plays a path when a
// path key is pressed. Default none.
func (v *Viewer) SetPlayPathModifiers(mods KeyModifiers) { v.playPathMods = mods }

// SetAddKeyFrameModifiers sets the modifier state that records a keyframe
// when a path key is pressed. Default Alt.
func (v *Viewer) SetAddKeyFrameModifiers(mods KeyModifiers) { v.addKeyFrameMods = mods }

// setDefaultShortcuts installs the stock keyboard bindings and the
// F1..F12 path keys.
func (v *Viewer) setDefaultShortcuts() {
	v.SetShortcut(KeyActionDrawAxis, ebiten.KeyA, 0)
	v.SetShortcut(KeyActionDrawGrid, ebiten.KeyG, 0)
	v.SetShortcut(KeyActionDisplayFPS, ebiten.KeyF, 0)
	v.SetShortcut(KeyActionDisplayZBuffer, ebiten.KeyZ, 0)
	v.SetShortcut(KeyActionEnableText, ebiten.KeySlash, ModShift)
	v.SetShortcut(KeyActionExitViewer, ebiten.KeyEscape, 0)
	v.SetShortcut(KeyActionSaveScreenshot, ebiten.KeyS, ModCtrl)
	v.SetShortcut(KeyActionCameraMode, ebiten.KeySpace, 0)
	v.SetShortcut(KeyActionFullScreen, ebiten.KeyEnter, ModAlt)
	v.SetShortcut(KeyActionStereo, ebiten.KeyS, 0)
	v.SetShortcut(KeyActionAnimation, ebiten.KeyEnter, 0)
	v.SetShortcut(KeyActionHelp, ebiten.KeyH, 0)
	v.SetShortcut(KeyActionEditCamera, ebiten.KeyC, 0)
	v.SetShortcut(KeyActionMoveCameraLeft, ebiten.KeyArrowLeft, 0)
	v.SetShortcut(KeyActionMoveCameraRight, ebiten.KeyArrowRight, 0)
	v.SetShortcut(KeyActionMoveCameraUp, ebiten.KeyArrowUp, 0)
	v.SetShortcut(KeyActionMoveCameraDown, ebiten.KeyArrowDown, 0)
	v.SetShortcut(KeyActionIncreaseFlySpeed, ebiten.KeyEqual, 0)
	v.SetShortcut(KeyActionDecreaseFlySpeed, ebiten.KeyMinus, 0)

	fkeys := []ebiten.Key{
		ebiten.KeyF1, ebiten.KeyF2, ebiten.KeyF3, ebiten.KeyF4,
		ebiten.KeyF5, ebiten.KeyF6, ebiten.KeyF7, ebiten.KeyF8,
		ebiten.KeyF9, ebiten.KeyF10, ebiten.KeyF11, ebiten.KeyF12,
	}
	for i, k := range fkeys {
		v.SetPathKey(k, i+1)
	}
}

// pollKeys feeds just-pressed keys to the shortcut dispatcher.
func (v *Viewer) pollKeys(mods KeyModifiers) {
	v.pollKeysWith(mods, inpututil.IsKeyJustPressed)
}

// pollKeysWith dispatches each just-pressed key at most once per frame. A
// key rebound both as a shortcut and as a path key would otherwise fire its
// shortcut action twice.
func (v *Viewer) pollKeysWith(mods KeyModifiers, justPressed func(ebiten.Key) bool) {
	handled := make(map[ebiten.Key]bool)
	for _, kc := range v.shortcuts {
		if kc.Mods == mods && !handled[kc.Key] && justPressed(kc.Key) {
			handled[kc.Key] = true
			v.handleKey(kc.Key, mods)
		}
	}
	for key := range v.pathKeys {
		if !handled[key] && justPressed(key) {
			v.handleKey(key, mods)
		}
	}
}

// handleKey dispatches one key press: a bound keyboard action first, then
// the path keys.
func (v *Viewer) handleKey(key ebiten.Key, mods KeyModifiers) {
	for action, kc := range v.shortcuts {
		if kc.Key == key && kc.Mods == mods {
			v.handleKeyboardAction(action)
			return
		}
	}
	if index, ok := v.pathKeys[key]; ok {
		v.handlePathKey(index, mods)
	}
}

// handlePathKey plays or records on a camera path. Pressing the same path
// key twice within the double-click interval turns play into reset and
// record into delete.
func (v *Viewer) handlePathKey(index int, mods KeyModifiers) {
	now := v.now()
	secondPress := index == v.lastPathIndex &&
		mods == v.lastPathMods &&
		now.Sub(v.lastPathTime) < doubleClickInterval
	v.lastPathIndex = index
	v.lastPathMods = mods
	v.lastPathTime = now

	switch mods {
	case v.addKeyFrameMods:
		if secondPress {
			n := 0
			if p := v.camera.Path(index); p != nil {
				n = p.NumberOfKeyFrames()
			}
			v.camera.DeletePath(index)
			if n <= 1 {
				v.DisplayMessage(fmt.Sprintf("Position %d deleted", index))
			} else {
				v.DisplayMessage(fmt.Sprintf("Path %d deleted", index))
			}
		} else {
			v.camera.AddKeyFrameToPath(index)
			n := v.camera.Path(index).NumberOfKeyFrames()
			if n == 1 {
				v.DisplayMessage(fmt.Sprintf("Position %d saved", index))
			} else {
				v.DisplayMessage(fmt.Sprintf("Path %d, position %d saved", index, n))
			}
		}
		v.needsRedraw = true

	case v.playPathMods:
		if secondPress {
			v.camera.ResetPath(index)
		} else {
			v.camera.PlayPath(index)
		}
		v.needsRedraw = true
	}
}

// handleKeyboardAction executes one keyboard action.
func (v *Viewer) handleKeyboardAction(action KeyboardAction) {
	switch action {
	case KeyActionDrawAxis:
		v.SetAxisIsDrawn(!v.axisIsDrawn)
	case KeyActionDrawGrid:
		v.SetGridIsDrawn(!v.gridIsDrawn)
	case KeyActionDisplayFPS:
		v.SetFPSIsDisplayed(!v.fpsIsDisplayed)
	case KeyActionDisplayZBuffer:
		v.SetZBufferIsDisplayed(!v.zBufferIsDisplayed)
	case KeyActionEnableText:
		v.textIsEnabled = !v.textIsEnabled
	case KeyActionExitViewer:
		v.exitRequested = true
	case KeyActionSaveScreenshot:
		v.QueueScreenshot("viewer")
	case KeyActionCameraMode:
		v.toggleCameraMode()
	case KeyActionFullScreen:
		v.SetFullScreen(!v.FullScreen())
	case KeyActionStereo:
		v.stereo = !v.stereo
		if v.stereo {
			v.DisplayMessage("Stereo display activated")
		} else {
			v.DisplayMessage("Stereo display deactivated")
		}
	case KeyActionAnimation:
		if v.animationStarted {
			v.StopAnimation()
		} else {
			v.StartAnimation()
		}
	case KeyActionHelp:
		v.helpIsDisplayed = !v.helpIsDisplayed
	case KeyActionEditCamera:
		v.SetCameraIsEdited(!v.cameraIsEdited)
	case KeyActionMoveCameraLeft:
		v.nudgeCamera(Vec3{-1, 0, 0})
	case KeyActionMoveCameraRight:
		v.nudgeCamera(Vec3{1, 0, 0})
	case KeyActionMoveCameraUp:
		v.nudgeCamera(Vec3{0, 1, 0})
	case KeyActionMoveCameraDown:
		v.nudgeCamera(Vec3{0, -1, 0})
	case KeyActionIncreaseFlySpeed:
		v.camera.SetFlySpeed(v.camera.FlySpeed() * 1.5)
	case KeyActionDecreaseFlySpeed:
		v.camera.SetFlySpeed(v.camera.FlySpeed() / 1.5)
	}
	v.needsRedraw = true
}

// nudgeCamera translates the camera in its screen plane by ten fly-speed
// steps along the given camera-local direction.
func (v *Viewer) nudgeCamera(local Vec3) {
	f := v.camera.Frame()
	f.Translate(f.InverseTransformOf(local.Scale(10*v.camera.FlySpeed())), false)
}

// toggleCameraMode switches between revolve and fly mode, reinstalling the
// default drag bindings of the new mode.
func (v *Viewer) toggleCameraMode() {
	if v.camera.Mode() == CameraModeRevolve {
		v.camera.SetMode(CameraModeFly)
		v.DisplayMessage("Camera in fly mode")
	} else {
		v.camera.SetMode(CameraModeRevolve)
		v.DisplayMessage("Camera in revolve mode")
	}
	v.setDefaultMouseBindings()
}

// keyActionString names a keyboard action for help text.
func keyActionString(a KeyboardAction) string {
	switch a {
	case KeyActionDrawAxis:
		return "Toggles the display of the world axis"
	case KeyActionDrawGrid:
		return "Toggles the display of the XY grid"
	case KeyActionDisplayFPS:
		return "Toggles the display of the frame rate"
	case KeyActionDisplayZBuffer:
		return "Toggles the display of the depth buffer"
	case KeyActionEnableText:
		return "Toggles the display of the text"
	case KeyActionExitViewer:
		return "Exits the viewer"
	case KeyActionSaveScreenshot:
		return "Saves a screenshot"
	case KeyActionCameraMode:
		return "Changes the camera mode (revolve or fly)"
	case KeyActionFullScreen:
		return "Toggles full screen"
	case KeyActionStereo:
		return "Toggles stereo display"
	case KeyActionAnimation:
		return "Starts or stops the animation"
	case KeyActionHelp:
		return "Opens this help"
	case KeyActionEditCamera:
		return "Toggles the camera edit display"
	case KeyActionMoveCameraLeft:
		return "Moves the camera left"
	case KeyActionMoveCameraRight:
		return "Moves the camera right"
	case KeyActionMoveCameraUp:
		return "Moves the camera up"
	case KeyActionMoveCameraDown:
		return "Moves the camera down"
	case KeyActionIncreaseFlySpeed:
		return "Increases the fly speed"
	case KeyActionDecreaseFlySpeed:
		return "Decreases the fly speed"
	}
	return ""
}

// keyComboString formats a key combo for help text, e.g. "Ctrl+S".
func keyComboString(kc KeyCombo) string {
	s := ""
	if kc.Mods&ModCtrl != 0 {
		s += "Ctrl+"
	}
	if kc.Mods&ModAlt != 0 {
		s += "Alt+"
	}
	if kc.Mods&ModShift != 0 {
		s += "Shift+"
	}
	if kc.Mods&ModMeta != 0 {
		s += "Meta+"
	}
	return s + kc.Key.String()
}

// KeyboardString returns a plain-text description of the keyboard
// shortcuts, one per line, sorted by action.
func (v *Viewer) KeyboardString() string {
	actions := make([]KeyboardAction, 0, len(v.shortcuts))
	for a := range v.shortcuts {
		actions = append(actions, a)
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })

	var b strings.Builder
	for _, a := range actions {
		fmt.Fprintf(&b, "%s: %s\n", keyComboString(v.shortcuts[a]), keyActionString(a))
	}
	if len(v.pathKeys) > 0 {
		fmt.Fprintf(&b, "F1..F%d: plays path (Alt adds a keyframe)\n", len(v.pathKeys))
	}
	return b.String()
}
