package export

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/nbodysim/internal/dynamo"
)

const background = "#0a0a0a"

// SnapshotSVG draws every sprite as a circle in world coordinates, with the
// world box as the view box. Sprites are filled from palette by color tag.
func SnapshotSVG(w io.Writer, world r2.Box, sprites []dynamo.Sprite, palette []colorful.Color) error {
	width := world.Max.X - world.Min.X
	height := world.Max.Y - world.Min.Y
	if !(width > 0) || !(height > 0) {
		return dynamo.Invalid("svg world", world)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="%g %g %g %g">
<rect x="%g" y="%g" width="%g" height="%g" fill="%s"/>
`, width, height, world.Min.X, world.Min.Y, width, height, world.Min.X, world.Min.Y, width, height, background)

	for _, s := range sprites {
		fill := "#ffffff"
		if len(palette) > 0 {
			fill = palette[s.ColorTag%len(palette)].Hex()
		}
		fmt.Fprintf(bw, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"/>
`, s.Position.X, s.Position.Y, s.Radius, fill)
	}

	bw.WriteString("</svg>\n")
	return bw.Flush()
}

func SnapshotSVGFile(path string, world r2.Box, sprites []dynamo.Sprite, palette []colorful.Color) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return SnapshotSVG(f, world, sprites, palette)
}
