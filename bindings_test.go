package viewkit

import (
	"strings"
	"testing"
)

// --- Default bindings ---

func TestDefaultDragBindings(t *testing.T) {
	v := NewViewer(nil)

	cases := []struct {
		combo  ModifierButtonCombo
		target DragTarget
		action DragAction
	}{
		{Combo(0, ButtonLeft), TargetCamera, ActionRotate},
		{Combo(0, ButtonMiddle), TargetCamera, ActionZoom},
		{Combo(0, ButtonRight), TargetCamera, ActionTranslate},
		{Combo(0, ButtonLeft|ButtonMiddle), TargetCamera, ActionScreenRotate},
		{Combo(0, ButtonRight|ButtonMiddle), TargetCamera, ActionScreenTranslate},
		{Combo(ModCtrl, ButtonLeft), TargetFrame, ActionRotate},
		{Combo(ModCtrl, ButtonMiddle), TargetFrame, ActionZoom},
		{Combo(ModCtrl, ButtonRight), TargetFrame, ActionTranslate},
		{Combo(ModShift, ButtonMiddle), TargetCamera, ActionZoomOnRegion},
	}
	for _, c := range cases {
		b, ok := v.MouseBindingFor(c.combo)
		if !ok {
			t.Errorf("no binding for %s", comboString(c.combo))
			continue
		}
		if b.Target != c.target || b.Action != c.action {
			t.Errorf("%s = (%v, %v), want (%v, %v)",
				comboString(c.combo), b.Target, b.Action, c.target, c.action)
		}
	}
}

func TestDefaultClickBindings(t *testing.T) {
	v := NewViewer(nil)

	cases := []struct {
		key    ClickBindingKey
		action ClickAction
	}{
		{ClickBindingKey{Combo: Combo(ModShift, ButtonLeft)}, ClickSelect},
		{ClickBindingKey{Combo: Combo(0, ButtonLeft), DoubleClick: true}, ClickAlignCamera},
		{ClickBindingKey{Combo: Combo(0, ButtonMiddle), DoubleClick: true}, ClickShowEntireScene},
		{ClickBindingKey{Combo: Combo(0, ButtonRight), DoubleClick: true}, ClickCenterScene},
		{ClickBindingKey{Combo: Combo(ModCtrl, ButtonLeft), DoubleClick: true}, ClickAlignFrame},
		{ClickBindingKey{Combo: Combo(ModCtrl, ButtonRight), DoubleClick: true}, ClickCenterFrame},
		{ClickBindingKey{Combo: Combo(0, ButtonLeft), DoubleClick: true, ButtonBefore: ButtonRight}, ClickRevolvePointFromPixel},
		{ClickBindingKey{Combo: Combo(0, ButtonRight), DoubleClick: true, ButtonBefore: ButtonLeft}, ClickRevolvePointToCenter},
		{ClickBindingKey{Combo: Combo(0, ButtonLeft), DoubleClick: true, ButtonBefore: ButtonMiddle}, ClickZoomOnPixel},
		{ClickBindingKey{Combo: Combo(0, ButtonRight), DoubleClick: true, ButtonBefore: ButtonMiddle}, ClickZoomToFit},
	}
	for _, c := range cases {
		a, ok := v.ClickBindingFor(c.key)
		if !ok {
			t.Errorf("no click binding for %+v", c.key)
			continue
		}
		if a != c.action {
			t.Errorf("click %+v = %v, want %v", c.key, a, c.action)
		}
	}
}

func TestDefaultWheelBindings(t *testing.T) {
	v := NewViewer(nil)
	if b, ok := v.WheelBindingFor(0); !ok || b.Target != TargetCamera || b.Action != ActionZoom {
		t.Errorf("plain wheel = %+v (%v), want camera zoom", b, ok)
	}
	if b, ok := v.WheelBindingFor(ModCtrl); !ok || b.Target != TargetFrame || b.Action != ActionZoom {
		t.Errorf("ctrl wheel = %+v (%v), want frame zoom", b, ok)
	}
}

// --- Validation ---

func TestMouseBindingRejectsButtonlessCombo(t *testing.T) {
	v := NewViewer(nil)
	v.SetMouseBinding(Combo(ModShift, NoButton), TargetCamera, ActionRotate, true)
	if _, ok := v.MouseBindingFor(Combo(ModShift, NoButton)); ok {
		t.Error("buttonless combo should be rejected")
	}
}

func TestMouseBindingRejectsCameraOnlyActionOnFrame(t *testing.T) {
	v := NewViewer(nil)
	for _, action := range []DragAction{
		ActionMoveForward, ActionMoveBackward, ActionRoll, ActionLookAround, ActionZoomOnRegion,
	} {
		combo := Combo(ModAlt, ButtonLeft)
		v.SetMouseBinding(combo, TargetFrame, action, true)
		if _, ok := v.MouseBindingFor(combo); ok {
			t.Errorf("%v should be rejected on the frame target", action)
		}
	}
}

func TestMouseBindingAcceptsCameraOnlyActionOnCamera(t *testing.T) {
	v := NewViewer(nil)
	combo := Combo(ModAlt, ButtonLeft)
	v.SetMouseBinding(combo, TargetCamera, ActionLookAround, true)
	if b, ok := v.MouseBindingFor(combo); !ok || b.Action != ActionLookAround {
		t.Errorf("look around on camera = %+v (%v), want bound", b, ok)
	}
}

func TestWheelBindingRestrictedSet(t *testing.T) {
	v := NewViewer(nil)

	v.SetWheelBinding(ModAlt, TargetCamera, ActionMoveForward, true)
	if b, ok := v.WheelBindingFor(ModAlt); !ok || b.Action != ActionMoveForward {
		t.Error("camera wheel should accept move forward")
	}

	v.SetWheelBinding(ModMeta, TargetCamera, ActionRotate, true)
	if _, ok := v.WheelBindingFor(ModMeta); ok {
		t.Error("rotate should be rejected on the wheel")
	}

	v.SetWheelBinding(ModMeta, TargetFrame, ActionMoveForward, true)
	if _, ok := v.WheelBindingFor(ModMeta); ok {
		t.Error("move forward should be rejected on the frame wheel")
	}

	v.SetWheelBinding(ModMeta, TargetFrame, ActionZoom, true)
	if b, ok := v.WheelBindingFor(ModMeta); !ok || b.Action != ActionZoom {
		t.Error("frame wheel should accept zoom")
	}
}

func TestClickBindingRejectsButtonlessCombo(t *testing.T) {
	v := NewViewer(nil)
	v.SetClickBinding(Combo(ModShift, NoButton), ClickCenterScene, false, NoButton)
	if _, ok := v.ClickBindingFor(ClickBindingKey{Combo: Combo(ModShift, NoButton)}); ok {
		t.Error("buttonless click combo should be rejected")
	}
}

func TestActionNoneRemovesBindings(t *testing.T) {
	v := NewViewer(nil)
	v.SetMouseBinding(Combo(0, ButtonLeft), TargetCamera, ActionNone, true)
	if _, ok := v.MouseBindingFor(Combo(0, ButtonLeft)); ok {
		t.Error("ActionNone should remove the drag binding")
	}
	v.SetWheelBinding(0, TargetCamera, ActionNone, true)
	if _, ok := v.WheelBindingFor(0); ok {
		t.Error("ActionNone should remove the wheel binding")
	}
	key := ClickBindingKey{Combo: Combo(ModShift, ButtonLeft)}
	v.SetClickBinding(key.Combo, ClickNone, false, NoButton)
	if _, ok := v.ClickBindingFor(key); ok {
		t.Error("ClickNone should remove the click binding")
	}
}

// --- Mutual exclusion ---

func TestDragBindingRemovesPlainClickBinding(t *testing.T) {
	v := NewViewer(nil)
	combo := Combo(ModShift, ButtonLeft) // default: select on single click
	v.SetMouseBinding(combo, TargetCamera, ActionRotate, true)
	if _, ok := v.ClickBindingFor(ClickBindingKey{Combo: combo}); ok {
		t.Error("drag binding should remove the plain click binding on the same combo")
	}
}

func TestPlainClickBindingRemovesDragBinding(t *testing.T) {
	v := NewViewer(nil)
	combo := Combo(0, ButtonLeft) // default: camera rotate drag
	v.SetClickBinding(combo, ClickCenterScene, false, NoButton)
	if _, ok := v.MouseBindingFor(combo); ok {
		t.Error("plain click binding should remove the drag binding on the same combo")
	}
}

func TestDoubleClickBindingKeepsDragBinding(t *testing.T) {
	v := NewViewer(nil)
	combo := Combo(0, ButtonLeft)
	v.SetClickBinding(combo, ClickCenterScene, true, NoButton)
	if _, ok := v.MouseBindingFor(combo); !ok {
		t.Error("double-click binding should not remove the drag binding")
	}
}

func TestChainedClickBindingKeepsDragBinding(t *testing.T) {
	v := NewViewer(nil)
	combo := Combo(0, ButtonLeft)
	v.SetClickBinding(combo, ClickCenterScene, true, ButtonMiddle)
	if _, ok := v.MouseBindingFor(combo); !ok {
		t.Error("chained double-click binding should not remove the drag binding")
	}
}

func TestClickBindingRejectsPriorButtonOnSingleClick(t *testing.T) {
	v := NewViewer(nil)
	combo := Combo(ModAlt, ButtonLeft)
	v.SetClickBinding(combo, ClickCenterScene, false, ButtonMiddle)
	key := ClickBindingKey{Combo: combo, ButtonBefore: ButtonMiddle}
	if _, ok := v.ClickBindingFor(key); ok {
		t.Error("prior button on a single click should be rejected")
	}
}

// --- Help text ---

func TestMouseStringListsDefaults(t *testing.T) {
	v := NewViewer(nil)
	s := v.MouseString()
	for _, want := range []string{
		"Left button: Rotates camera",
		"Middle button: Zooms camera",
		"Right button: Translates camera",
		"Ctrl+Left button: Rotates manipulated frame",
		"Shift+Left button: Selects",
	} {
		if !strings.Contains(s, want+"\n") {
			t.Errorf("MouseString missing %q\ngot:\n%s", want, s)
		}
	}
}
