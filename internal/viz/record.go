package viz

import (
	"image"
	"image/color"
	"image/gif"
	"os"

	"github.com/san-kum/bouncesim/internal/dynamo"
)

// braille dot bit for sub-pixel (dx, dy) of a cell
func dotBit(dx, dy int) int {
	return pixelMap[dy][dx]
}

// rasterize paints the canvas into a paletted image, one charW x charH block
// per cell. Tinted cells get their own palette entry.
func rasterize(c *Canvas, charW, charH int) *image.Paletted {
	pal := color.Palette{color.Black, color.White}
	index := make(map[dynamo.Color]uint8)

	img := image.NewPaletted(image.Rect(0, 0, c.Width*charW, c.Height*charH), pal)
	dotW, dotH := charW/2, charH/4

	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			r := c.Grid[row][col]
			if r <= 0x2800 {
				continue
			}
			ink := uint8(1)
			if tint := c.Colors[row][col]; tint != nil {
				i, ok := index[*tint]
				if !ok && len(img.Palette) < 256 {
					img.Palette = append(img.Palette, color.RGBA{tint[0], tint[1], tint[2], 255})
					i = uint8(len(img.Palette) - 1)
					index[*tint] = i
					ok = true
				}
				if ok {
					ink = i
				}
			}

			pattern := int(r - 0x2800)
			baseX, baseY := col*charW, row*charH
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&dotBit(dx, dy) == 0 {
						continue
					}
					for py := 0; py < dotH; py++ {
						for px := 0; px < dotW; px++ {
							img.SetColorIndex(baseX+dx*dotW+px, baseY+dy*dotH+py, ink)
						}
					}
				}
			}
		}
	}
	return img
}

func (m *Model) captureFrame() {
	m.frames = append(m.frames, rasterize(m.canvas, 8, 16))
}

func (m *Model) saveGIF(path string) error {
	if len(m.frames) == 0 {
		return nil
	}
	delay := int(m.frameDt * 100)
	if delay < 2 {
		delay = 2
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, delay)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, &anim)
}
