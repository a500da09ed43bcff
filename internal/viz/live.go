package viz

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/nbodysim/internal/dynamo"
	"github.com/san-kum/nbodysim/internal/physics"
	"github.com/san-kum/nbodysim/internal/sim"
)

const (
	canvasWidth     = 70
	canvasHeight    = 24
	historyCapacity = 240
	paletteSize     = 8

	rateStep     = 5.0
	maxSubSteps  = 32
	overlayDepth = 5
	dropMass     = 5.0
	dropRadius   = 5.0
)

type TickMsg time.Time

// Live drives a started Simulator one frame per tick and draws it.
type Live struct {
	ctx      context.Context
	sim      *sim.Simulator
	title    string
	canvas   *Canvas
	view     Viewport
	theme    Theme
	palette  []lipgloss.Color
	bodies   []float64
	frameMs  []float64
	film     *Film
	filmPath string
	field    r2.Vec
	showTree bool
	showHelp bool
	err      error
}

type LiveOption func(*Live)

func WithTheme(name string) LiveOption {
	return func(m *Live) { m.theme = GetTheme(name) }
}

// WithFilmPath sets where g-key recordings are saved.
func WithFilmPath(path string) LiveOption {
	return func(m *Live) { m.filmPath = path }
}

func NewLive(ctx context.Context, s *sim.Simulator, title string, opts ...LiveOption) Live {
	m := Live{
		ctx:      ctx,
		sim:      s,
		title:    title,
		canvas:   NewCanvas(canvasWidth, canvasHeight),
		theme:    ThemeCyberpunk,
		bodies:   make([]float64, 0, historyCapacity),
		frameMs:  make([]float64, 0, historyCapacity),
		filmPath: "nbodysim.gif",
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.view = m.canvas.Viewport(s.Config().Bounds())
	m.field = s.Field()
	m.palette = m.theme.Palette(paletteSize)
	return m
}

// Err is the error that ended the session, if any.
func (m Live) Err() error { return m.err }

func (m Live) tick() tea.Cmd {
	rate := m.sim.Config().UpdateRate
	return tea.Tick(time.Duration(float64(time.Second)/rate), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Live) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and advances the simulation.
func (m Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.stopFilm()
			return m, tea.Quit
		case " ":
			if m.sim.State() == sim.Paused {
				m.sim.Resume()
			} else {
				m.sim.Pause()
			}
		case "s":
			m.sim.SetSpawnActive(!m.sim.SpawnActive())
		case "c":
			m.sim.Clear()
		case "1":
			m.err = m.sim.SetStrategy(physics.BruteForce)
		case "2":
			m.err = m.sim.SetStrategy(physics.Grid)
		case "3":
			m.err = m.sim.SetStrategy(physics.Tree)
		case "+", "=":
			m.err = m.eachStream(func(i int, sc sim.StreamConfig) error {
				return m.sim.SetStreamRate(i, sc.Rate+rateStep)
			})
		case "-":
			m.err = m.eachStream(func(i int, sc sim.StreamConfig) error {
				return m.sim.SetStreamRate(i, max(sc.Rate-rateStep, 0))
			})
		case "]":
			m.err = m.eachStream(func(i int, sc sim.StreamConfig) error {
				return m.sim.SetStreamCount(i, sc.Count+1)
			})
		case "[":
			m.err = m.eachStream(func(i int, sc sim.StreamConfig) error {
				return m.sim.SetStreamCount(i, max(sc.Count-1, 0))
			})
		case "f":
			if m.sim.Field() != (r2.Vec{}) {
				m.field = m.sim.Field()
				m.sim.SetField(r2.Vec{})
			} else {
				m.sim.SetField(m.field)
			}
		case "m":
			m.err = m.sim.SetGravityMode((m.sim.GravityMode() + 1) % (sim.GravityBarnesHut + 1))
		case ">":
			m.err = m.sim.SetSubSteps(min(m.sim.SubSteps()+1, maxSubSteps))
		case "<":
			m.err = m.sim.SetSubSteps(max(m.sim.SubSteps()-1, 1))
		case "a":
			center := m.sim.Config().Bounds().Center()
			_, m.err = m.sim.AddBody(dynamo.NewBody(center, dropMass, dropRadius))
		case "o":
			m.showTree = !m.showTree
		case "t":
			m.theme = m.theme.Next()
			m.palette = m.theme.Palette(paletteSize)
		case "g":
			if m.film != nil {
				m.stopFilm()
			} else {
				m.film = NewFilm(m.theme.Colors(paletteSize))
			}
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.sim.State() == sim.Running {
			if err := m.sim.Frame(m.ctx); err != nil {
				m.err = err
				return m, tea.Quit
			}
			st := m.sim.Stats()
			m.bodies = push(m.bodies, float64(st.Bodies))
			m.frameMs = push(m.frameMs, float64(st.Duration)/float64(time.Millisecond))
		}
		m.draw()
		if m.film != nil {
			m.film.Capture(m.canvas)
		}
		return m, m.tick()
	}
	return m, nil
}

// eachStream applies set to every stream and returns the first error.
func (m Live) eachStream(set func(i int, sc sim.StreamConfig) error) error {
	for i, sc := range m.sim.Streams() {
		if err := set(i, sc); err != nil {
			return err
		}
	}
	return nil
}

func (m *Live) stopFilm() {
	if m.film == nil {
		return
	}
	if err := m.film.Save(m.filmPath); err != nil {
		m.err = err
	}
	m.film = nil
}

func push(xs []float64, x float64) []float64 {
	if len(xs) == historyCapacity {
		copy(xs, xs[1:])
		xs = xs[:len(xs)-1]
	}
	return append(xs, x)
}

func (m Live) draw() {
	m.canvas.Clear()
	m.canvas.DrawFrame(m.view)
	if m.showTree {
		m.sim.TreeCells(func(b r2.Box, depth int) {
			if depth <= overlayDepth {
				m.canvas.DrawBox(m.view, b)
			}
		})
	}
	m.canvas.DrawSprites(m.view, m.sim.Snapshot())
}

func (m Live) status() string {
	switch {
	case m.film != nil:
		return StatusRecording.Render(fmt.Sprintf("REC %d", m.film.Len()))
	case m.sim.State() == sim.Paused:
		return StatusPaused.Render("PAUSED")
	case m.sim.State() == sim.Running:
		return StatusRunning.Render("RUNNING")
	}
	return StatusPaused.Render(strings.ToUpper(m.sim.State().String()))
}

func (m Live) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.Render(m.palette, lipgloss.NewStyle().Foreground(m.theme.Muted)))

	st := m.sim.Stats()
	var s strings.Builder
	s.WriteString(GradientText(strings.ToUpper(m.title), m.theme.Primary, m.theme.Secondary) + "\n")
	s.WriteString(m.status() + "\n\n")

	if len(m.bodies) > 1 {
		chart := asciigraph.Plot(m.bodies, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Bodies"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", m.sim.Elapsed()))
	row("Bodies", fmt.Sprintf("%d", m.sim.Len()))
	if limit := m.sim.MaxBodies(); limit > 0 {
		row("Capacity", ProgressBar(float64(m.sim.Len())/float64(limit), 16))
	}
	row("Strategy", m.sim.Strategy().String())
	row("Gravity", m.sim.GravityMode().String())
	row("Streams", onOff(m.sim.SpawnActive()))
	if streams := m.sim.Streams(); len(streams) > 0 {
		row("Rate", fmt.Sprintf("%.0f/s x%d", streams[0].Rate, streams[0].Count))
	}
	row("Field", onOff(m.sim.Field() != (r2.Vec{})))
	row("Substeps", fmt.Sprintf("%d", m.sim.SubSteps()))
	row("Contacts", fmt.Sprintf("%d", st.Collisions))
	row("Frame", fmt.Sprintf("%.2fms", lastOr(m.frameMs, 0)))
	if m.err != nil {
		s.WriteString(lipgloss.NewStyle().Foreground(m.theme.Warning).Render(m.err.Error()) + "\n")
	}

	s.WriteString(helpStyle.Render("─────────────────────\nSP:Pause S:Streams C:Clear\n+/-:Rate [/]:Count M:Gravity\n1/2/3:Strategy Q:Quit ?:Help"))
	body := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return helpOverlay + "\n\n" + body
	}
	return body
}

const helpOverlay = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space  - Pause/Resume physics       ║
║  S      - Toggle stream spawning     ║
║  C      - Clear all bodies           ║
║  1      - Brute-force collisions     ║
║  2      - Grid collisions            ║
║  3      - Quadtree collisions        ║
║  + / -  - Stream rate up/down        ║
║  [ / ]  - Bodies per spawn           ║
║  M      - Cycle gravity mode         ║
║  F      - Toggle uniform field       ║
║  < / >  - Fewer/more substeps        ║
║  A      - Drop a body at the center  ║
║  O      - Toggle quadtree overlay    ║
║  T      - Cycle themes               ║
║  G      - Toggle GIF recording       ║
║  Q      - Quit                       ║
║  ?      - Toggle this help           ║
╚══════════════════════════════════════╝`

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func lastOr(xs []float64, def float64) float64 {
	if len(xs) == 0 {
		return def
	}
	return xs[len(xs)-1]
}

// RunLive starts s, runs the interactive view until quit and stops s.
func RunLive(ctx context.Context, s *sim.Simulator, title string, opts ...LiveOption) (err error) {
	if err := s.Start(); err != nil {
		return err
	}
	defer func() {
		if stopErr := s.Stop(); err == nil {
			err = stopErr
		}
	}()

	final, err := tea.NewProgram(NewLive(ctx, s, title, opts...), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(Live); ok {
		return m.Err()
	}
	return nil
}
