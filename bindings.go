package viewkit

import (
	"fmt"
	"sort"
	"strings"
)

// MouseBinding associates a drag target and action with a modifier+button
// combo, plus the constraint flag forwarded to the frame when the action
// starts.
type MouseBinding struct {
	Target         DragTarget
	Action         DragAction
	WithConstraint bool
}

// WheelBinding associates a target and action with a modifier state.
// Only a restricted action set is meaningful on a wheel.
type WheelBinding struct {
	Target         DragTarget
	Action         DragAction
	WithConstraint bool
}

// bindingTable holds every mouse binding of a viewer, plus the description
// strings the help text is generated from.
type bindingTable struct {
	drag  map[ModifierButtonCombo]MouseBinding
	wheel map[KeyModifiers]WheelBinding
	click map[ClickBindingKey]ClickAction

	dragDesc  map[ModifierButtonCombo]string
	clickDesc map[ClickBindingKey]string
}

func newBindingTable() bindingTable {
	return bindingTable{
		drag:      make(map[ModifierButtonCombo]MouseBinding),
		wheel:     make(map[KeyModifiers]WheelBinding),
		click:     make(map[ClickBindingKey]ClickAction),
		dragDesc:  make(map[ModifierButtonCombo]string),
		clickDesc: make(map[ClickBindingKey]string),
	}
}

// SetMouseBinding binds a drag action to a modifier+button combo on the
// given target. ActionNone removes the binding. A combo without buttons is
// rejected with a warning, as is a camera-only action on the frame target.
// Binding a combo as a drag removes the plain single-click binding on the
// same combo: a button sequence cannot be both.
func (v *Viewer) SetMouseBinding(combo ModifierButtonCombo, target DragTarget, action DragAction, withConstraint bool) {
	if combo.Buttons() == NoButton {
		warnf("SetMouseBinding: no button in combo %q, binding ignored", comboString(combo))
		return
	}
	if target == TargetFrame && cameraOnlyDragAction(action) {
		warnf("SetMouseBinding: %s is not available on the manipulated frame, binding ignored", dragActionString(action))
		return
	}

	if action == ActionNone {
		delete(v.bindings.drag, combo)
		delete(v.bindings.dragDesc, combo)
		return
	}

	v.bindings.drag[combo] = MouseBinding{Target: target, Action: action, WithConstraint: withConstraint}
	v.bindings.dragDesc[combo] = dragActionString(action) + " " + targetString(target)

	delete(v.bindings.click, ClickBindingKey{Combo: combo})
	delete(v.bindings.clickDesc, ClickBindingKey{Combo: combo})
}

// SetClickBinding binds a click action to a combo, optionally restricted to
// double clicks and to presses made while buttonBefore was already held. A
// prior button only applies to double clicks and is rejected otherwise.
// ClickNone removes the binding. Binding a plain single click removes the
// drag binding on the same combo; a double click coexists with drags.
func (v *Viewer) SetClickBinding(combo ModifierButtonCombo, action ClickAction, doubleClick bool, buttonBefore MouseButtonMask) {
	if combo.Buttons() == NoButton {
		warnf("SetClickBinding: no button in combo %q, binding ignored", comboString(combo))
		return
	}
	if buttonBefore != NoButton && !doubleClick {
		warnf("SetClickBinding: a prior button only applies to double clicks, binding ignored")
		return
	}

	key := ClickBindingKey{Combo: combo, DoubleClick: doubleClick, ButtonBefore: buttonBefore}
	if action == ClickNone {
		delete(v.bindings.click, key)
		delete(v.bindings.clickDesc, key)
		return
	}

	v.bindings.click[key] = action
	v.bindings.clickDesc[key] = clickActionString(action)

	if !doubleClick && buttonBefore == NoButton {
		delete(v.bindings.drag, combo)
		delete(v.bindings.dragDesc, combo)
	}
}

// SetWheelBinding binds a wheel action to a modifier state. The camera
// accepts zoom, move-forward, and move-backward; the frame only zoom.
// ActionNone removes the binding.
func (v *Viewer) SetWheelBinding(mods KeyModifiers, target DragTarget, action DragAction, withConstraint bool) {
	switch action {
	case ActionNone, ActionZoom:
	case ActionMoveForward, ActionMoveBackward:
		if target == TargetFrame {
			warnf("SetWheelBinding: %s is not available on the manipulated frame wheel, binding ignored", dragActionString(action))
			return
		}
	default:
		warnf("SetWheelBinding: %s cannot be bound to the wheel, binding ignored", dragActionString(action))
		return
	}

	if action == ActionNone {
		delete(v.bindings.wheel, mods)
		return
	}
	v.bindings.wheel[mods] = WheelBinding{Target: target, Action: action, WithConstraint: withConstraint}
}

// MouseBindingFor returns the drag binding of a combo, if any.
func (v *Viewer) MouseBindingFor(combo ModifierButtonCombo) (MouseBinding, bool) {
	b, ok := v.bindings.drag[combo]
	return b, ok
}

// ClickBindingFor returns the click action of a binding key, if any.
func (v *Viewer) ClickBindingFor(key ClickBindingKey) (ClickAction, bool) {
	a, ok := v.bindings.click[key]
	return a, ok
}

// WheelBindingFor returns the wheel binding of a modifier state, if any.
func (v *Viewer) WheelBindingFor(mods KeyModifiers) (WheelBinding, bool) {
	b, ok := v.bindings.wheel[mods]
	return b, ok
}

// frameDragBinding returns the frame-channel drag binding whose buttons
// match, ignoring modifiers. Grabbed frames resolve their drags this way, so
// a frame gesture drives the grabber whatever modifier is down. When several
// modifier variants exist the lowest combo wins, keeping the lookup
// deterministic.
func (t *bindingTable) frameDragBinding(buttons MouseButtonMask) (MouseBinding, bool) {
	var bestCombo ModifierButtonCombo
	var best MouseBinding
	found := false
	for combo, b := range t.drag {
		if b.Target != TargetFrame || combo.Buttons() != buttons {
			continue
		}
		if !found || combo < bestCombo {
			bestCombo, best, found = combo, b, true
		}
	}
	return best, found
}

// frameWheelBinding returns a frame-channel wheel binding, ignoring
// modifiers, preferring the variant bound with the fewest of them.
func (t *bindingTable) frameWheelBinding() (WheelBinding, bool) {
	var bestMods KeyModifiers
	var best WheelBinding
	found := false
	for mods, b := range t.wheel {
		if b.Target != TargetFrame {
			continue
		}
		if !found || mods < bestMods {
			bestMods, best, found = mods, b, true
		}
	}
	return best, found
}

// setDefaultMouseBindings installs the stock binding table for the current
// camera mode. The frame channel uses the Ctrl modifier.
func (v *Viewer) setDefaultMouseBindings() {
	const frameMods = ModCtrl

	for _, mods := range []KeyModifiers{0, frameMods} {
		target := TargetCamera
		if mods == frameMods {
			target = TargetFrame
		}

		if target == TargetCamera && v.camera.Mode() == CameraModeFly {
			v.SetMouseBinding(Combo(mods, ButtonLeft), target, ActionMoveForward, true)
			v.SetMouseBinding(Combo(mods, ButtonMiddle), target, ActionLookAround, true)
			v.SetMouseBinding(Combo(mods, ButtonRight), target, ActionMoveBackward, true)
			v.SetMouseBinding(Combo(mods, ButtonLeft|ButtonMiddle), target, ActionRoll, true)
		} else {
			v.SetMouseBinding(Combo(mods, ButtonLeft), target, ActionRotate, true)
			v.SetMouseBinding(Combo(mods, ButtonMiddle), target, ActionZoom, true)
			v.SetMouseBinding(Combo(mods, ButtonRight), target, ActionTranslate, true)
			v.SetMouseBinding(Combo(mods, ButtonLeft|ButtonMiddle), target, ActionScreenRotate, true)
		}
		v.SetMouseBinding(Combo(mods, ButtonRight|ButtonMiddle), target, ActionScreenTranslate, true)
		v.SetWheelBinding(mods, target, ActionZoom, true)
	}

	v.SetMouseBinding(Combo(ModShift, ButtonMiddle), TargetCamera, ActionZoomOnRegion, true)
	v.SetClickBinding(Combo(ModShift, ButtonLeft), ClickSelect, false, NoButton)

	v.SetClickBinding(Combo(0, ButtonLeft), ClickAlignCamera, true, NoButton)
	v.SetClickBinding(Combo(0, ButtonMiddle), ClickShowEntireScene, true, NoButton)
	v.SetClickBinding(Combo(0, ButtonRight), ClickCenterScene, true, NoButton)

	v.SetClickBinding(Combo(frameMods, ButtonLeft), ClickAlignFrame, true, NoButton)
	v.SetClickBinding(Combo(frameMods, ButtonRight), ClickCenterFrame, true, NoButton)

	v.SetClickBinding(Combo(0, ButtonLeft), ClickRevolvePointFromPixel, true, ButtonRight)
	v.SetClickBinding(Combo(0, ButtonRight), ClickRevolvePointToCenter, true, ButtonLeft)
	v.SetClickBinding(Combo(0, ButtonLeft), ClickZoomOnPixel, true, ButtonMiddle)
	v.SetClickBinding(Combo(0, ButtonRight), ClickZoomToFit, true, ButtonMiddle)
}

// MouseString returns a plain-text description of the current mouse
// bindings, one per line, drags first then clicks.
func (v *Viewer) MouseString() string {
	var b strings.Builder

	dragCombos := make([]ModifierButtonCombo, 0, len(v.bindings.dragDesc))
	for c := range v.bindings.dragDesc {
		dragCombos = append(dragCombos, c)
	}
	sort.Slice(dragCombos, func(i, j int) bool { return dragCombos[i] < dragCombos[j] })
	for _, c := range dragCombos {
		fmt.Fprintf(&b, "%s: %s\n", comboString(c), v.bindings.dragDesc[c])
	}

	clickKeys := make([]ClickBindingKey, 0, len(v.bindings.clickDesc))
	for k := range v.bindings.clickDesc {
		clickKeys = append(clickKeys, k)
	}
	sort.Slice(clickKeys, func(i, j int) bool {
		a, c := clickKeys[i], clickKeys[j]
		if a.Combo != c.Combo {
			return a.Combo < c.Combo
		}
		if a.DoubleClick != c.DoubleClick {
			return !a.DoubleClick
		}
		return a.ButtonBefore < c.ButtonBefore
	})
	for _, k := range clickKeys {
		fmt.Fprintf(&b, "%s: %s\n", clickComboString(k), v.bindings.clickDesc[k])
	}

	if len(v.bindings.wheel) > 0 {
		mods := make([]KeyModifiers, 0, len(v.bindings.wheel))
		for m := range v.bindings.wheel {
			mods = append(mods, m)
		}
		sort.Slice(mods, func(i, j int) bool { return mods[i] < mods[j] })
		for _, m := range mods {
			wb := v.bindings.wheel[m]
			fmt.Fprintf(&b, "%s: %s %s\n", comboString(Combo(m, NoButton)), dragActionString(wb.Action), targetString(wb.Target))
		}
	}

	return b.String()
}

// clickComboString formats a click binding key for help text, e.g.
// "Right button double click with Left button pressed".
func clickComboString(k ClickBindingKey) string {
	s := comboString(k.Combo)
	if k.DoubleClick {
		s += " double click"
	}
	if k.ButtonBefore != NoButton {
		s += " with " + comboString(ModifierButtonCombo(k.ButtonBefore)) + " pressed"
	}
	return s
}

// targetString names a drag target for help text.
func targetString(t DragTarget) string {
	if t == TargetFrame {
		return "manipulated frame"
	}
	return "camera"
}
