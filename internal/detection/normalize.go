package detection

import (
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
)

// Luma is a grayscale intensity grid with values in 0..255, stored row-major.
type Luma struct {
	Width  int
	Height int
	Pix    []float64
}

// At returns the intensity at (x, y). No bounds checking is performed.
func (l *Luma) At(x, y int) float64 {
	return l.Pix[y*l.Width+x]
}

// Normalized holds both inputs brought to a common size and color space.
type Normalized struct {
	Before *Luma
	After  *Luma

	// AfterColor is the "after" image at the normalized size, kept in color
	// as the base of the diff overlay.
	AfterColor *image.NRGBA

	Width  int
	Height int

	// Resized reports whether either input had to be resized.
	Resized bool
}

// Normalize validates both images, resizes them to the smaller of the two
// widths and heights, and converts them to luminance.
//
// Resizing uses area averaging so downscaling does not alias into spurious
// change. With opts.AllowResize false, inputs of different size fail with
// ErrDimensionMismatch. A positive opts.BlurSigma smooths both images before
// the luminance conversion; the color base is never blurred.
func Normalize(before, after image.Image, opts Options) (*Normalized, error) {
	if err := validateImage("before", before); err != nil {
		return nil, err
	}
	if err := validateImage("after", after); err != nil {
		return nil, err
	}

	bb, ab := before.Bounds(), after.Bounds()
	width := minInt(bb.Dx(), ab.Dx())
	height := minInt(bb.Dy(), ab.Dy())
	resized := bb.Dx() != ab.Dx() || bb.Dy() != ab.Dy()

	if resized && !opts.AllowResize {
		return nil, fmt.Errorf("%w: before is %dx%d, after is %dx%d",
			ErrDimensionMismatch, bb.Dx(), bb.Dy(), ab.Dx(), ab.Dy())
	}

	beforeN := fitTo(before, width, height)
	afterN := fitTo(after, width, height)

	beforeSrc, afterSrc := beforeN, afterN
	if opts.BlurSigma > 0 {
		beforeSrc = imaging.Clone(blur.Gaussian(beforeN, opts.BlurSigma))
		afterSrc = imaging.Clone(blur.Gaussian(afterN, opts.BlurSigma))
	}

	return &Normalized{
		Before:     luminance(beforeSrc),
		After:      luminance(afterSrc),
		AfterColor: afterN,
		Width:      width,
		Height:     height,
		Resized:    resized,
	}, nil
}

func validateImage(name string, img image.Image) error {
	if img == nil {
		return fmt.Errorf("%w: %s image is missing", ErrInvalidImage, name)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("%w: %s image is empty (%dx%d)", ErrInvalidImage, name, b.Dx(), b.Dy())
	}
	if channelCount(img.ColorModel()) == 0 {
		return fmt.Errorf("%w: %s image has no color channels", ErrInvalidImage, name)
	}
	return nil
}

// channelCount derives the number of intensity channels from a color model.
func channelCount(m color.Model) int {
	if m == nil {
		return 0
	}
	if p, ok := m.(color.Palette); ok {
		if len(p) == 0 {
			return 0
		}
		return 3
	}
	switch m {
	case color.GrayModel, color.Gray16Model, color.AlphaModel, color.Alpha16Model:
		return 1
	case color.RGBAModel, color.RGBA64Model, color.NRGBAModel, color.NRGBA64Model, color.CMYKModel:
		return 4
	default:
		return 3
	}
}

// fitTo returns img as an origin-anchored NRGBA of exactly width x height.
func fitTo(img image.Image, width, height int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return imaging.Clone(img)
	}
	return imaging.Resize(img, width, height, imaging.Box)
}

// luminance converts to linear ITU-R BT.601 luma: 0.299*R + 0.587*G + 0.114*B.
// No gamma correction is applied.
func luminance(img *image.NRGBA) *Luma {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := &Luma{Width: w, Height: h, Pix: make([]float64, w*h)}
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			r := float64(row[x*4])
			g := float64(row[x*4+1])
			bl := float64(row[x*4+2])
			out.Pix[y*w+x] = 0.299*r + 0.587*g + 0.114*bl
		}
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
