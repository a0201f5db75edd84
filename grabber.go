package viewkit

// Grabber is an object that can take priority over the viewer's mouse
// bindings while the cursor hovers it: a 3D handle, a spinner, an on-screen
// widget. The viewer polls CheckIfGrabsMouse on every cursor move; the
// grabber answers by flipping the state GrabsMouse reports. While a grabber
// is active, every mouse event is forwarded to it instead of the binding
// tables.
type Grabber interface {
	// CheckIfGrabsMouse updates the grab state for the cursor at (x, y).
	// cam gives access to projections for 3D grabbers.
	CheckIfGrabsMouse(x, y int, cam *Camera)
	// GrabsMouse reports the state set by the last CheckIfGrabsMouse.
	GrabsMouse() bool

	MousePress(e MouseEvent, cam *Camera)
	MouseMove(e MouseEvent, cam *Camera)
	MouseRelease(e MouseEvent, cam *Camera)
	MouseDoubleClick(e MouseEvent, cam *Camera)
	Wheel(e WheelEvent, cam *Camera)
}

// GrabberPool is the explicit registry of the grabbers one viewer consults.
// Each viewer owns its own pool; grabbers are never shared implicitly
// between viewers. Disabled grabbers stay registered but are skipped.
type GrabberPool struct {
	grabbers []poolEntry
}

type poolEntry struct {
	grabber Grabber
	enabled bool
	// frame is non-nil when the grabber was registered as a manipulated
	// frame. The dispatcher uses it to route drags through the binding
	// table's frame channel without inspecting the grabber's type.
	frame *ManipulatedFrame
}

// Add registers a grabber, enabled. Registering the same grabber twice is
// a no-op.
func (p *GrabberPool) Add(g Grabber) {
	p.add(g, nil)
}

// AddFrame registers a manipulated frame grabber. The frame capability is
// recorded once here so event dispatch never needs a type inspection.
func (p *GrabberPool) AddFrame(g Grabber, frame *ManipulatedFrame) {
	p.add(g, frame)
}

func (p *GrabberPool) add(g Grabber, frame *ManipulatedFrame) {
	for _, e := range p.grabbers {
		if e.grabber == g {
			return
		}
	}
	p.grabbers = append(p.grabbers, poolEntry{grabber: g, enabled: true, frame: frame})
}

// Remove unregisters a grabber.
func (p *GrabberPool) Remove(g Grabber) {
	for i, e := range p.grabbers {
		if e.grabber == g {
			p.grabbers = append(p.grabbers[:i], p.grabbers[i+1:]...)
			return
		}
	}
}

// SetEnabled enables or disables a registered grabber. A disabled grabber
// is never polled and never receives events.
func (p *GrabberPool) SetEnabled(g Grabber, enabled bool) {
	for i := range p.grabbers {
		if p.grabbers[i].grabber == g {
			p.grabbers[i].enabled = enabled
			return
		}
	}
}

// IsEnabled reports whether g is registered and enabled.
func (p *GrabberPool) IsEnabled(g Grabber) bool {
	for _, e := range p.grabbers {
		if e.grabber == g {
			return e.enabled
		}
	}
	return false
}

// Len returns the number of registered grabbers, enabled or not.
func (p *GrabberPool) Len() int { return len(p.grabbers) }

// check polls every enabled grabber for the cursor position and returns the
// first one that grabs, with its frame capability.
func (p *GrabberPool) check(x, y int, cam *Camera) (Grabber, *ManipulatedFrame) {
	for _, e := range p.grabbers {
		if !e.enabled {
			continue
		}
		e.grabber.CheckIfGrabsMouse(x, y, cam)
		if e.grabber.GrabsMouse() {
			return e.grabber, e.frame
		}
	}
	return nil, nil
}

// frameOf returns the frame capability of a registered grabber, or nil.
func (p *GrabberPool) frameOf(g Grabber) *ManipulatedFrame {
	for _, e := range p.grabbers {
		if e.grabber == g {
			return e.frame
		}
	}
	return nil
}
