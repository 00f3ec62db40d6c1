package ocr

import (
	"image"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/sightline/internal/geometry"
)

// minTextHeight is the image height below which frames are upscaled before
// recognition; Tesseract struggles with glyphs under roughly 20 pixels.
const minTextHeight = 300

// Preprocess prepares a camera frame for recognition: small images are
// upscaled, then the image is converted to grayscale and its contrast
// raised.
func Preprocess(img image.Image) image.Image {
	if h := img.Bounds().Dy(); h > 0 && h < minTextHeight {
		img = imaging.Resize(img, 0, minTextHeight, imaging.Lanczos)
	}
	gray := effect.Grayscale(img)
	return adjust.Contrast(gray, 0.4)
}

// CropRegion cuts a normalized region out of img. The region is clamped to
// the unit square first.
func CropRegion(img image.Image, region geometry.Rect) image.Image {
	r := region.Clamp()
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	rect := image.Rect(
		b.Min.X+int(r.X*w),
		b.Min.Y+int(r.Y*h),
		b.Min.X+int(r.MaxX()*w),
		b.Min.Y+int(r.MaxY()*h),
	)
	return imaging.Crop(img, rect)
}
