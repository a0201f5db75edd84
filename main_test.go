package viewkit

import (
	"errors"
	"os"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

// mainLoopGame runs the test binary inside ebiten's main loop so that
// tests (and the code they exercise) may call window functions such as
// ebiten.WindowPosition, which panic before the loop starts.
type mainLoopGame struct {
	m       *testing.M
	started bool
	done    chan int
}

func (g *mainLoopGame) Update() error {
	if !g.started {
		g.started = true
		go func() { g.done <- g.m.Run() }()
	}
	select {
	case code := <-g.done:
		g.done <- code
		return ebiten.Termination
	default:
	}
	return nil
}

func (g *mainLoopGame) Draw(*ebiten.Image) {}

func (g *mainLoopGame) Layout(w, h int) (int, int) { return w, h }

func TestMain(m *testing.M) {
	g := &mainLoopGame{m: m, done: make(chan int, 1)}
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		panic(err)
	}
	os.Exit(<-g.done)
}
