package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/nbodysim/internal/dynamo"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const (
	blank = 0x2800
	noTag = -1
)

// Canvas is a braille raster Width x Height cells in size, or
// 2*Width x 4*Height dots. Every cell remembers the color tag of the last
// sprite drawn into it.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Tags          [][]int
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		Tags:   make([][]int, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Tags[i] = make([]int, w)
	}
	c.Clear()
	return c
}

// Set sets the dot at (x, y) in dot coordinates.
func (c *Canvas) Set(x, y int) {
	c.SetTagged(x, y, noTag)
}

// SetTagged sets a dot and tags its cell.
func (c *Canvas) SetTagged(x, y, tag int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	if tag != noTag {
		c.Tags[row][col] = tag
	}
}

func (c *Canvas) Unset(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] &^= rune(pixelMap[y%4][x%2])
	if c.Grid[row][col] < blank {
		c.Grid[row][col] = blank
	}
}

// IsSet reports whether the dot at (x, y) is lit.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.Tags[i][j] = noTag
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawDisc fills a disc of radius r dots. r 0 lights a single dot.
func (c *Canvas) DrawDisc(cx, cy, r, tag int) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				c.SetTagged(cx+dx, cy+dy, tag)
			}
		}
	}
}

// Viewport maps a world box onto the canvas dots, preserving aspect ratio.
type Viewport struct {
	World  r2.Box
	scale  float64
	offset r2.Vec
}

func (c *Canvas) Viewport(world r2.Box) Viewport {
	w, h := world.Max.X-world.Min.X, world.Max.Y-world.Min.Y
	dw, dh := float64(2*c.Width), float64(4*c.Height)
	v := Viewport{World: world}
	if w <= 0 || h <= 0 {
		return v
	}
	v.scale = math.Min(dw/w, dh/h)
	v.offset = r2.Vec{X: (dw - w*v.scale) / 2, Y: (dh - h*v.scale) / 2}
	return v
}

// Project returns the dot coordinates of world point p.
func (v Viewport) Project(p r2.Vec) (x, y int) {
	q := r2.Add(r2.Scale(v.scale, r2.Sub(p, v.World.Min)), v.offset)
	return int(math.Floor(q.X)), int(math.Floor(q.Y))
}

// Scale converts a world length to dots.
func (v Viewport) Scale(l float64) int {
	return int(l * v.scale)
}

// DrawSprites renders every sprite as a tagged disc.
func (c *Canvas) DrawSprites(v Viewport, sprites []dynamo.Sprite) {
	for _, s := range sprites {
		x, y := v.Project(s.Position)
		c.DrawDisc(x, y, v.Scale(s.Radius), s.ColorTag)
	}
}

// DrawFrame outlines the world box.
func (c *Canvas) DrawFrame(v Viewport) {
	c.DrawBox(v, v.World)
}

// DrawBox outlines world box b, clipped to the canvas.
func (c *Canvas) DrawBox(v Viewport, b r2.Box) {
	x0, y0 := v.Project(b.Min)
	x1, y1 := v.Project(b.Max)
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, 2*c.Width-1), min(y1, 4*c.Height-1)
	c.DrawLine(x0, y0, x1, y0)
	c.DrawLine(x1, y0, x1, y1)
	c.DrawLine(x1, y1, x0, y1)
	c.DrawLine(x0, y1, x0, y0)
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Render colors every tagged cell from palette; untagged cells use base.
func (c *Canvas) Render(palette []lipgloss.Color, base lipgloss.Style) string {
	var b strings.Builder
	for i, row := range c.Grid {
		start := 0
		for j := 1; j <= len(row); j++ {
			if j < len(row) && c.Tags[i][j] == c.Tags[i][start] {
				continue
			}
			run := string(row[start:j])
			if tag := c.Tags[i][start]; tag != noTag && len(palette) > 0 {
				b.WriteString(base.Foreground(palette[tag%len(palette)]).Render(run))
			} else {
				b.WriteString(base.Render(run))
			}
			start = j
		}
		b.WriteString("\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
