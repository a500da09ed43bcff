package viz

import (
	"bytes"
	"context"
	"image/gif"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/nbodysim/internal/dynamo"
	"github.com/san-kum/nbodysim/internal/physics"
	"github.com/san-kum/nbodysim/internal/sim"
)

func TestCanvas_SetUnset(t *testing.T) {
	c := NewCanvas(4, 3)
	c.Set(3, 5)
	if c.Grid[1][1] != 0x2810 {
		t.Errorf("cell = %U, want U+2810", c.Grid[1][1])
	}
	if !c.IsSet(3, 5) || c.IsSet(2, 5) {
		t.Error("IsSet disagrees with Set")
	}
	c.Unset(3, 5)
	if c.Grid[1][1] != blank {
		t.Errorf("cell = %U after Unset", c.Grid[1][1])
	}

	c.Set(-1, 2)
	c.Set(100, 2)
	if strings.Count(c.String(), string(rune(blank))) != 12 {
		t.Error("out of range dots should be ignored")
	}
}

func TestCanvas_DrawDisc(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawDisc(10, 10, 1, 2)

	lit := 0
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			if c.IsSet(x, y) {
				lit++
			}
		}
	}
	if lit != 5 {
		t.Errorf("radius 1 disc lit %d dots, want 5", lit)
	}
	if c.Tags[2][5] != 2 {
		t.Errorf("center cell tag = %d, want 2", c.Tags[2][5])
	}

	c.Clear()
	if c.Tags[2][5] != noTag || c.IsSet(10, 10) {
		t.Error("Clear should reset dots and tags")
	}
}

func TestViewport_Project(t *testing.T) {
	c := NewCanvas(10, 5)
	tests := []struct {
		name   string
		world  r2.Box
		p      r2.Vec
		wx, wy int
	}{
		{"square center", r2.Box{Max: r2.Vec{X: 100, Y: 100}}, r2.Vec{X: 50, Y: 50}, 10, 10},
		{"wide world letterboxed", r2.Box{Max: r2.Vec{X: 200, Y: 100}}, r2.Vec{}, 0, 5},
		{"offset origin", r2.Box{Min: r2.Vec{X: 10, Y: 10}, Max: r2.Vec{X: 110, Y: 110}}, r2.Vec{X: 10, Y: 10}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := c.Viewport(tt.world).Project(tt.p)
			if x != tt.wx || y != tt.wy {
				t.Errorf("Project(%v) = (%d, %d), want (%d, %d)", tt.p, x, y, tt.wx, tt.wy)
			}
		})
	}
}

func TestCanvas_DrawSpritesAndRender(t *testing.T) {
	c := NewCanvas(10, 5)
	v := c.Viewport(r2.Box{Max: r2.Vec{X: 100, Y: 100}})
	c.DrawSprites(v, []dynamo.Sprite{
		{Position: r2.Vec{X: 50, Y: 50}, Radius: 5, ColorTag: 1},
		{Position: r2.Vec{X: 5, Y: 5}, Radius: 0, ColorTag: 3},
	})
	if !c.IsSet(10, 10) || !c.IsSet(1, 1) {
		t.Error("sprites not drawn")
	}

	out := c.Render(ThemeOcean.Palette(4), lipgloss.NewStyle())
	if strings.Count(out, "\n") != c.Height {
		t.Errorf("rendered %d lines, want %d", strings.Count(out, "\n"), c.Height)
	}
}

func TestTheme(t *testing.T) {
	if GetTheme("nope").Name != ThemeCyberpunk.Name {
		t.Error("unknown theme should fall back")
	}
	th := ThemeCyberpunk
	for range Themes {
		th = th.Next()
	}
	if th.Name != ThemeCyberpunk.Name {
		t.Errorf("cycling every theme ended at %s", th.Name)
	}

	p := ThemeSunset.Palette(8)
	seen := map[lipgloss.Color]bool{}
	for _, c := range p {
		if len(c) != 7 || c[0] != '#' {
			t.Errorf("palette color %q is not hex", c)
		}
		seen[c] = true
	}
	if len(seen) != 8 {
		t.Errorf("palette has %d distinct colors, want 8", len(seen))
	}
}

func TestGradientText_Empty(t *testing.T) {
	if GradientText("", ThemeOcean.Primary, ThemeOcean.Accent) != "" {
		t.Error("empty text should render empty")
	}
}

func TestFilm_Encode(t *testing.T) {
	c := NewCanvas(6, 3)
	f := NewFilm(ThemeOcean.Colors(4))
	c.DrawDisc(4, 4, 1, 1)
	f.Capture(c)
	c.Clear()
	f.Capture(c)

	var buf bytes.Buffer
	if err := f.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	anim, err := gif.DecodeAll(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(anim.Image) != 2 {
		t.Fatalf("decoded %d frames, want 2", len(anim.Image))
	}
	b := anim.Image[0].Bounds()
	if b.Dx() != 2*6*dotW || b.Dy() != 4*3*dotH {
		t.Errorf("frame bounds = %v", b)
	}
	if idx := anim.Image[0].ColorIndexAt(4*dotW, 4*dotH); idx != 3 {
		t.Errorf("tagged dot color index = %d, want 3", idx)
	}
}

func newLive(t *testing.T) (Live, *sim.Simulator) {
	t.Helper()
	cfg := sim.DefaultConfig()
	cfg.Workers = 1
	s, err := sim.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Stop() })
	return NewLive(context.Background(), s, "test"), s
}

func key(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestLive_Keys(t *testing.T) {
	m, s := newLive(t)

	next, _ := m.Update(key(' '))
	if s.State() != sim.Paused {
		t.Errorf("space: state = %v, want paused", s.State())
	}
	next, _ = next.Update(key(' '))
	if s.State() != sim.Running {
		t.Errorf("second space: state = %v, want running", s.State())
	}

	next, _ = next.Update(key('s'))
	if s.SpawnActive() {
		t.Error("s should stop spawning")
	}

	next, _ = next.Update(key('1'))
	if s.Strategy() != physics.BruteForce {
		t.Errorf("1: strategy = %v", s.Strategy())
	}
	next, _ = next.Update(key('3'))
	if s.Strategy() != physics.Tree {
		t.Errorf("3: strategy = %v", s.Strategy())
	}

	s.AddBody(dynamo.NewBody(r2.Vec{X: 100, Y: 100}, 1, 2))
	next, _ = next.Update(key('c'))
	if s.Len() != 0 {
		t.Errorf("c: %d bodies remain", s.Len())
	}

	_, cmd := next.Update(key('q'))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestLive_ControlKeys(t *testing.T) {
	m, s := newLive(t)
	var next tea.Model = m
	press := func(r rune) {
		t.Helper()
		next, _ = next.Update(key(r))
		if err := next.(Live).Err(); err != nil {
			t.Fatalf("key %q: %v", r, err)
		}
	}

	tests := []struct {
		name  string
		keys  string
		check func() bool
	}{
		{"rate up", "+", func() bool { return s.Streams()[0].Rate == 25 }},
		{"rate up clamps", "=========", func() bool { return s.Streams()[0].Rate == sim.MaxStreamRate }},
		{"rate down", "-", func() bool { return s.Streams()[0].Rate == sim.MaxStreamRate-rateStep }},
		{"rate down clamps", "--------------", func() bool { return s.Streams()[0].Rate == sim.MinStreamRate }},
		{"count up", "]]", func() bool { return s.Streams()[0].Count == 3 }},
		{"count clamps high", "]]]]]]]]]]", func() bool { return s.Streams()[0].Count == sim.MaxStreamCount }},
		{"count clamps low", "[[[[[[[[[[[[", func() bool { return s.Streams()[0].Count == sim.MinStreamCount }},
		{"field off", "f", func() bool { return s.Field() == (r2.Vec{}) }},
		{"field restored", "f", func() bool { return s.Field() == (r2.Vec{Y: 150.81}) }},
		{"gravity wraps to off", "m", func() bool { return s.GravityMode() == sim.GravityOff }},
		{"gravity direct", "m", func() bool { return s.GravityMode() == sim.GravityDirect }},
		{"more substeps", ">>", func() bool { return s.SubSteps() == 10 }},
		{"fewer substeps floor", strings.Repeat("<", 20), func() bool { return s.SubSteps() == 1 }},
		{"drop body", "a", func() bool {
			b, ok := s.Body(s.Len() - 1)
			return ok && b.Position == (r2.Vec{X: 355, Y: 355})
		}},
		{"overlay", "o", func() bool { return next.(Live).showTree }},
	}

	for _, tt := range tests {
		for _, r := range tt.keys {
			press(r)
		}
		if !tt.check() {
			t.Errorf("%s: keys %q did not take effect", tt.name, tt.keys)
		}
	}
}

func TestLive_TreeOverlay(t *testing.T) {
	m, s := newLive(t)
	s.SetSpawnActive(false)
	for i := 0; i < 40; i++ {
		s.AddBody(dynamo.NewBody(r2.Vec{X: 20 + 16*float64(i), Y: 60 + 12*float64(i%7)}, 1, 2))
	}
	next, _ := m.Update(TickMsg(time.Now()))

	plain := next.(Live)
	plain.draw()
	without := strings.Count(plain.canvas.String(), string(rune(blank)))

	next, _ = next.Update(key('o'))
	overlay := next.(Live)
	overlay.draw()
	with := strings.Count(overlay.canvas.String(), string(rune(blank)))

	if with >= without {
		t.Errorf("overlay left %d blank cells, plain view %d", with, without)
	}
}

func TestLive_TickAdvancesFrame(t *testing.T) {
	m, s := newLive(t)

	next, cmd := m.Update(TickMsg(time.Now()))
	if cmd == nil {
		t.Error("tick should schedule the next tick")
	}
	if s.Frames() != 1 {
		t.Errorf("frames = %d, want 1", s.Frames())
	}
	if s.Len() == 0 {
		t.Error("default stream should have spawned on the first frame")
	}

	view := next.View()
	if !strings.Contains(view, "Strategy") || !strings.Contains(view, "grid") {
		t.Error("view is missing the stats panel")
	}
}

func TestLive_PausedTickDoesNotStep(t *testing.T) {
	m, s := newLive(t)
	s.Pause()
	m.Update(TickMsg(time.Now()))
	if s.Frames() != 0 {
		t.Errorf("paused tick advanced to frame %d", s.Frames())
	}
}
