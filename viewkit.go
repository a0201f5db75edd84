package viewkit

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default foreground color.
var ColorWhite = Color{1, 1, 1, 1}

// ColorDarkGray is the default background color.
var ColorDarkGray = Color{0.2, 0.2, 0.2, 1}

// Rect is an axis-aligned rectangle in screen pixels. The coordinate system
// has its origin at the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// MouseButton identifies a single mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

// MouseButtonMask is a bitmask of mouse buttons. Values can be combined with
// bitwise OR (e.g. ButtonLeft | ButtonMiddle).
type MouseButtonMask uint8

const (
	ButtonLeft MouseButtonMask = 1 << iota // left mouse button
	ButtonMiddle
	ButtonRight

	// NoButton is the empty button mask, used for wheel bindings and as the
	// "no prior button" value of click bindings.
	NoButton MouseButtonMask = 0
)

// Mask returns the bitmask with only this button set.
func (b MouseButton) Mask() MouseButtonMask {
	switch b {
	case MouseButtonLeft:
		return ButtonLeft
	case MouseButtonRight:
		return ButtonRight
	case MouseButtonMiddle:
		return ButtonMiddle
	}
	return NoButton
}

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)

// ModifierButtonCombo packs a KeyModifiers bitmask and a MouseButtonMask into
// a single value. It is the lookup key of every mouse binding table: the low
// byte holds the buttons, the high byte the modifiers, so equality and
// ordering are well-defined and a combo can be used directly as a map key.
type ModifierButtonCombo uint16

// Combo builds a ModifierButtonCombo from a modifier and a button bitmask.
func Combo(mods KeyModifiers, buttons MouseButtonMask) ModifierButtonCombo {
	return ModifierButtonCombo(uint16(mods)<<8 | uint16(buttons))
}

// Buttons returns the mouse button part of the combo.
func (c ModifierButtonCombo) Buttons() MouseButtonMask {
	return MouseButtonMask(c & 0xff)
}

// Modifiers returns the keyboard modifier part of the combo.
func (c ModifierButtonCombo) Modifiers() KeyModifiers {
	return KeyModifiers(c >> 8)
}

// DragAction is a continuous action applied to a camera frame or a
// manipulated frame during a press-move-release mouse sequence.
type DragAction uint8

const (
	ActionNone            DragAction = iota // no action; sentinel for unbound combos
	ActionRotate                            // rotates around the revolve point (camera) or origin (frame)
	ActionZoom                              // moves along the view direction, speed scaled by distance
	ActionTranslate                         // translates in the screen plane
	ActionMoveForward                       // flies forward at flySpeed (camera only)
	ActionLookAround                        // rotates the view direction without moving (camera only)
	ActionMoveBackward                      // flies backward at flySpeed (camera only)
	ActionScreenRotate                      // rotates around the screen normal axis
	ActionRoll                              // rolls around the view direction (camera only)
	ActionScreenTranslate                   // translates, snapped to the dominant screen axis
	ActionZoomOnRegion                      // fits the rubber-banded screen region (camera only)
)

// cameraOnlyDragAction reports whether the action is only meaningful on the
// camera and is rejected on the frame channel by SetMouseBinding.
func cameraOnlyDragAction(a DragAction) bool {
	switch a {
	case ActionMoveForward, ActionMoveBackward, ActionRoll, ActionLookAround, ActionZoomOnRegion:
		return true
	}
	return false
}

// ClickAction is a one-shot action triggered atomically by a (possibly
// double) click.
type ClickAction uint8

const (
	ClickNone                  ClickAction = iota // no action; sentinel for unbound keys
	ClickZoomOnPixel                              // interpolates the camera toward the pixel under the cursor
	ClickZoomToFit                                // interpolates the camera so the whole scene is visible
	ClickSelect                                   // runs the selection protocol at the click position
	ClickRevolvePointFromPixel                    // sets the revolve point from the pixel under the cursor
	ClickRevolvePointToCenter                     // resets the revolve point to the scene center
	ClickCenterFrame                              // projects the manipulated frame onto the camera axis
	ClickCenterScene                              // moves the camera so the scene center is on the view axis
	ClickShowEntireScene                          // moves the camera so the whole scene is visible
	ClickAlignFrame                               // aligns the manipulated frame with the camera frame
	ClickAlignCamera                              // aligns the camera with the closest world axis
)

// DragTarget selects which object a drag or wheel binding manipulates. The
// target is an explicit tag carried by the binding so that dispatch never
// needs to inspect the manipulated object's type per event.
type DragTarget uint8

const (
	TargetCamera DragTarget = iota // the camera's frame
	TargetFrame                    // the free manipulated frame
)

// ClickBindingKey identifies a click binding: a modifier+button combo, a
// double-click flag, and the buttons that were already held before the press
// (meaningful only for double clicks, e.g. right-press then double-left-click).
type ClickBindingKey struct {
	Combo        ModifierButtonCombo
	DoubleClick  bool
	ButtonBefore MouseButtonMask
}

// dragActionString returns the help-text verb for a drag action.
func dragActionString(a DragAction) string {
	switch a {
	case ActionRotate:
		return "Rotates"
	case ActionZoom:
		return "Zooms"
	case ActionTranslate:
		return "Translates"
	case ActionMoveForward:
		return "Moves forward"
	case ActionLookAround:
		return "Looks around"
	case ActionMoveBackward:
		return "Moves backward"
	case ActionScreenRotate:
		return "Screen rotates"
	case ActionRoll:
		return "Rolls"
	case ActionScreenTranslate:
		return "Screen translates"
	case ActionZoomOnRegion:
		return "Zooms on region for"
	}
	return ""
}

// clickActionString returns the help-text verb for a click action.
func clickActionString(a ClickAction) string {
	switch a {
	case ClickZoomOnPixel:
		return "Zooms on pixel"
	case ClickZoomToFit:
		return "Zooms to fit scene"
	case ClickSelect:
		return "Selects"
	case ClickRevolvePointFromPixel:
		return "Sets revolve around point"
	case ClickRevolvePointToCenter:
		return "Resets revolve around point"
	case ClickCenterFrame:
		return "Centers frame"
	case ClickCenterScene:
		return "Centers scene"
	case ClickShowEntireScene:
		return "Shows entire scene"
	case ClickAlignFrame:
		return "Aligns frame"
	case ClickAlignCamera:
		return "Aligns camera"
	}
	return ""
}

// comboString formats a modifier+button combo for help text, e.g.
// "Ctrl+Left button".
func comboString(c ModifierButtonCombo) string {
	s := ""
	mods := c.Modifiers()
	if mods&ModCtrl != 0 {
		s += "Ctrl+"
	}
	if mods&ModAlt != 0 {
		s += "Alt+"
	}
	if mods&ModShift != 0 {
		s += "Shift+"
	}
	if mods&ModMeta != 0 {
		s += "Meta+"
	}
	buttons := c.Buttons()
	names := ""
	if buttons&ButtonLeft != 0 {
		names = "Left"
	}
	if buttons&ButtonMiddle != 0 {
		if names != "" {
			names += "+"
		}
		names += "Middle"
	}
	if buttons&ButtonRight != 0 {
		if names != "" {
			names += "+"
		}
		names += "Right"
	}
	if names == "" {
		names = "Wheel"
	}
	return s + names + " button"
}
