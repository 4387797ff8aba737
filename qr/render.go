package qr

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
)

// Render rasterizes the symbol as a two-color paletted image. Every module
// becomes a ModuleSize by ModuleSize block of pixels and the quiet zone adds
// Border modules of white on each side, so the result is
// (Size + 2*Border) * ModuleSize pixels square.
func Render(sym *Symbol) *image.Paletted {
	scale := sym.Config.ModuleSize
	border := sym.Config.Border
	dim := (sym.Size() + 2*border) * scale

	// Palette index 0 is white, so the zeroed pixel buffer already is an
	// all-white canvas including the quiet zone.
	img := image.NewPaletted(image.Rect(0, 0, dim, dim), color.Palette{color.White, color.Black})

	for y := 0; y < sym.Size(); y++ {
		for x := 0; x < sym.Size(); x++ {
			if !sym.modules[y][x] {
				continue
			}
			px := (x + border) * scale
			py := (y + border) * scale
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					img.SetColorIndex(px+dx, py+dy, 1)
				}
			}
		}
	}
	return img
}

// EncodePNG writes img to w in PNG format.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
