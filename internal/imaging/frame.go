package imaging

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// BytesPerPixel is the size of one BGRA pixel in a Frame buffer.
const BytesPerPixel = 4

// ErrUnreadableFrame is returned when a frame's buffer cannot be interpreted
// with its declared geometry.
var ErrUnreadableFrame = errors.New("unreadable frame")

// Frame is a raw camera frame: a 4-byte-per-pixel buffer in B, G, R, A order.
//
// Row y starts at Pix[y*Stride]. Stride may exceed Width*4 when the capture
// pipeline pads rows.
type Frame struct {
	Width  int
	Height int
	Stride int
	Pix    []byte
}

// NewFrame allocates a black, fully opaque frame with a tight stride.
func NewFrame(width, height int) *Frame {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	f := &Frame{
		Width:  width,
		Height: height,
		Stride: width * BytesPerPixel,
		Pix:    make([]byte, width*height*BytesPerPixel),
	}
	for i := 3; i < len(f.Pix); i += BytesPerPixel {
		f.Pix[i] = 0xFF
	}
	return f
}

// FromImage converts any image to a BGRA frame.
func FromImage(img image.Image) *Frame {
	nrgba := imaging.Clone(img)
	bounds := nrgba.Bounds()
	f := NewFrame(bounds.Dx(), bounds.Dy())
	for y := 0; y < f.Height; y++ {
		src := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+f.Width*4]
		dst := f.Pix[y*f.Stride : y*f.Stride+f.Width*BytesPerPixel]
		for x := 0; x < f.Width; x++ {
			i := x * 4
			dst[i+0] = src[i+2]
			dst[i+1] = src[i+1]
			dst[i+2] = src[i+0]
			dst[i+3] = src[i+3]
		}
	}
	return f
}

// Validate reports whether the buffer is large enough for the declared
// width, height and stride.
func (f *Frame) Validate() error {
	if f == nil {
		return fmt.Errorf("%w: nil frame", ErrUnreadableFrame)
	}
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("%w: empty dimensions %dx%d", ErrUnreadableFrame, f.Width, f.Height)
	}
	if f.Stride < f.Width*BytesPerPixel {
		return fmt.Errorf("%w: stride %d shorter than row of %d pixels", ErrUnreadableFrame, f.Stride, f.Width)
	}
	need := (f.Height-1)*f.Stride + f.Width*BytesPerPixel
	if len(f.Pix) < need {
		return fmt.Errorf("%w: buffer holds %d bytes, need %d", ErrUnreadableFrame, len(f.Pix), need)
	}
	return nil
}

// RGB returns the color channels of the pixel at (x, y). The caller must
// have validated the frame and bounds.
func (f *Frame) RGB(x, y int) (r, g, b uint8) {
	i := y*f.Stride + x*BytesPerPixel
	return f.Pix[i+2], f.Pix[i+1], f.Pix[i]
}

// SetRGB writes an opaque pixel at (x, y). Out-of-bounds writes are ignored.
func (f *Frame) SetRGB(x, y int, r, g, b uint8) {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return
	}
	i := y*f.Stride + x*BytesPerPixel
	f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3] = b, g, r, 0xFF
}

// FillRect paints a pixel rectangle [x1,x2)×[y1,y2) with one color.
func (f *Frame) FillRect(x1, y1, x2, y2 int, r, g, b uint8) {
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			f.SetRGB(x, y, r, g, b)
		}
	}
}

// Image returns a copy of the frame as an NRGBA image for encoding or
// display.
func (f *Frame) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	if f.Validate() != nil {
		return img
	}
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			si := y*f.Stride + x*BytesPerPixel
			di := y*img.Stride + x*4
			img.Pix[di+0] = f.Pix[si+2]
			img.Pix[di+1] = f.Pix[si+1]
			img.Pix[di+2] = f.Pix[si+0]
			img.Pix[di+3] = f.Pix[si+3]
		}
	}
	return img
}

// EdgeStrength is the crude saturation/contrast proxy |R−G| + |G−B| + |B−R|.
// It ranges from 0 (gray) to 510 (fully saturated primary).
func EdgeStrength(r, g, b uint8) int {
	return absDiff(r, g) + absDiff(g, b) + absDiff(b, r)
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
