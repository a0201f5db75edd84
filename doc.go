// Package viewkit is an embeddable 3D viewer interaction layer for
// [Ebitengine].
//
// Viewkit provides the camera, mouse and keyboard binding tables, the
// selection protocol, keyframe camera paths, visual hint overlays, and XML
// state persistence that a 3D viewer application needs, while leaving the
// actual scene rendering to the host.
//
// # Quick start
//
// Implement [SceneDrawer] on your scene, wrap it in a [Viewer], and forward
// your [ebiten.Game] methods to it:
//
//	type Game struct{ viewer *viewkit.Viewer }
//
//	func (g *Game) Update() error              { return g.viewer.Update() }
//	func (g *Game) Draw(s *ebiten.Image)       { g.viewer.Draw(s) }
//	func (g *Game) Layout(w, h int) (int, int) { return w, h }
//
//	func main() {
//		scene := &MyScene{}
//		viewer := viewkit.NewViewer(scene)
//		viewer.Camera().SetSceneRadius(10)
//		if _, err := viewer.RestoreStateFromFile(); err != nil {
//			log.Print(err)
//		}
//		ebiten.RunGame(&Game{viewer: viewer})
//	}
//
// The default bindings give the usual trackball interaction: left drag
// rotates, middle drag zooms, right drag translates, the wheel zooms, and
// holding Ctrl drives the manipulated frame instead of the camera. Press H
// for the full list.
//
// # Optional host capabilities
//
// The scene value may additionally implement [FastDrawer] (cheap rendering
// during drags), [NamesDrawer] (selection), [Animator] (simulation loop),
// [DepthImager] (point-under-pixel queries), and [DepthImageProvider] (the
// z-buffer display). Capabilities are detected once in [NewViewer].
//
// Camera path playback and the zoom/fit animations are tweened
// (via [gween]).
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package viewkit
