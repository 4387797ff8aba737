package qr

import (
	"image"

	"golang.org/x/image/draw"
)

// ResizeNearest scales src to width by height using nearest-neighbor sampling
// and returns the result as a new image, leaving src untouched. Nearest
// keeps module edges hard instead of blending them, which is what a symbol
// needs to stay scannable after scaling. Resizing to the source's own
// dimensions reproduces it pixel for pixel.
func ResizeNearest(src image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
