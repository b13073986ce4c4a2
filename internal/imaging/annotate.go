package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DefaultBoxColor is the outline color used when none is configured.
var DefaultBoxColor = color.NRGBA{R: 0, G: 255, B: 255, A: 255}

// DrawRegions outlines each box on img and labels it with its 1-based
// position in boxes. Boxes are clipped to the image; labels are drawn inside
// the box's top-left corner on a dark background so they stay readable over
// the red heatmap.
func DrawRegions(img *image.NRGBA, boxes []image.Rectangle, outline color.NRGBA) {
	bounds := img.Bounds()
	labelFG := image.NewUniform(color.NRGBA{255, 255, 255, 255})
	labelBG := image.NewUniform(color.NRGBA{0, 0, 0, 200})

	for i, box := range boxes {
		r := box.Intersect(bounds)
		if r.Empty() {
			continue
		}
		drawOutline(img, r, outline)

		label := strconv.Itoa(i + 1)
		face := basicfont.Face7x13
		labelRect := image.Rect(r.Min.X, r.Min.Y,
			r.Min.X+len(label)*face.Advance+2, r.Min.Y+face.Height).Intersect(bounds)
		draw.Draw(img, labelRect, labelBG, image.Point{}, draw.Over)

		d := &font.Drawer{
			Dst:  img,
			Src:  labelFG,
			Face: face,
			Dot:  fixed.P(r.Min.X+1, r.Min.Y+face.Ascent),
		}
		d.DrawString(label)
	}
}

func drawOutline(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetNRGBA(x, r.Min.Y, c)
		img.SetNRGBA(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetNRGBA(r.Min.X, y, c)
		img.SetNRGBA(r.Max.X-1, y, c)
	}
}

// ParseHexColor parses "#RRGGBB" or "#RRGGBBAA" (the leading '#' is optional).
func ParseHexColor(hex string) (color.NRGBA, error) {
	if hex == "" {
		return color.NRGBA{}, fmt.Errorf("empty color string")
	}
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}

	alpha := uint8(255)
	switch len(hex) {
	case 7:
	case 9:
		a, err := strconv.ParseUint(hex[7:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid alpha in color %q: %w", hex, err)
		}
		alpha = uint8(a)
		hex = hex[:7]
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex color length: %q", hex)
	}

	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}
