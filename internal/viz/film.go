package viz

import (
	"image"
	"image/color"
	"image/gif"
	"io"
	"os"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	dotW = 4
	dotH = 4
)

// Film records canvas frames for export as an animated GIF.
type Film struct {
	frames  []*image.Paletted
	palette color.Palette
	// Delay per frame in 1/100 s.
	Delay int
}

// NewFilm builds a palette of black, white and the given tag colors.
func NewFilm(tags []colorful.Color) *Film {
	p := color.Palette{color.Black, color.White}
	for _, c := range tags {
		p = append(p, c)
	}
	return &Film{palette: p, Delay: 2}
}

func (f *Film) Len() int { return len(f.frames) }

// Capture rasterizes every lit dot of c, colored by its cell tag.
func (f *Film) Capture(c *Canvas) {
	img := image.NewPaletted(image.Rect(0, 0, 2*c.Width*dotW, 4*c.Height*dotH), f.palette)
	tags := len(f.palette) - 2
	for y := 0; y < 4*c.Height; y++ {
		for x := 0; x < 2*c.Width; x++ {
			if !c.IsSet(x, y) {
				continue
			}
			idx := uint8(1)
			if tag := c.Tags[y/4][x/2]; tag != noTag && tags > 0 {
				idx = uint8(2 + tag%tags)
			}
			for py := 0; py < dotH; py++ {
				for px := 0; px < dotW; px++ {
					img.SetColorIndex(x*dotW+px, y*dotH+py, idx)
				}
			}
		}
	}
	f.frames = append(f.frames, img)
}

func (f *Film) Encode(w io.Writer) error {
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range f.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, f.Delay)
	}
	return gif.EncodeAll(w, &anim)
}

// Save writes the film to path. An empty film writes nothing.
func (f *Film) Save(path string) error {
	if len(f.frames) == 0 {
		return nil
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return f.Encode(file)
}
