package photometric

import (
	"image"
	"image/color"
	"image/draw"
)

// Color is a non-premultiplied color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// Rect is the destination rectangle of a decode call.
type Rect struct {
	Left, Top     int
	Width, Height int
}

// Buffer is the caller-owned pixel buffer decoders write into.
// Decoders only call Set for pixels inside the region they were given.
type Buffer interface {
	Set(x, y int, c Color)
}

// Frame is an in-memory Buffer holding Width x Height colors.
type Frame struct {
	Width, Height int
	Pix           []Color
}

// NewFrame allocates a frame.
func NewFrame(width, height int) *Frame {
	return &Frame{Width: width, Height: height, Pix: make([]Color, width*height)}
}

// Set stores c at (x, y). Points outside the frame are ignored.
func (f *Frame) Set(x, y int, c Color) {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return
	}
	f.Pix[y*f.Width+x] = c
}

// At returns the color at (x, y).
func (f *Frame) At(x, y int) Color {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return Color{}
	}
	return f.Pix[y*f.Width+x]
}

// ImageBuffer writes decoded colors into a draw.Image as 16-bit
// non-premultiplied values. Coordinates are offset by the image bounds.
type ImageBuffer struct {
	Image draw.Image
}

// NewImageBuffer wraps img.
func NewImageBuffer(img draw.Image) *ImageBuffer {
	return &ImageBuffer{Image: img}
}

// NewNRGBA64Buffer allocates an image.NRGBA64 of the given size and wraps it.
func NewNRGBA64Buffer(width, height int) (*ImageBuffer, *image.NRGBA64) {
	img := image.NewNRGBA64(image.Rect(0, 0, width, height))
	return &ImageBuffer{Image: img}, img
}

// Set implements Buffer.
func (b *ImageBuffer) Set(x, y int, c Color) {
	origin := b.Image.Bounds().Min
	b.Image.Set(origin.X+x, origin.Y+y, color.NRGBA64{
		R: to16(c.R),
		G: to16(c.G),
		B: to16(c.B),
		A: to16(c.A),
	})
}

func to16(v float32) uint16 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 0xffff
	}
	return uint16(v*0xffff + 0.5)
}

// flushRow copies a completed row into dst.
func flushRow(dst Buffer, left, y int, row []Color) {
	for i, c := range row {
		dst.Set(left+i, y, c)
	}
}
