package detection

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// heatStop is one keypoint of the dissimilarity gradient.
type heatStop struct {
	col colorful.Color
	pos float64
}

// heatGradient runs from neutral gray (no change) through amber to red.
var heatGradient = []heatStop{
	{mustParseHex("#3a3a3a"), 0.0},
	{mustParseHex("#ffb000"), 0.5},
	{mustParseHex("#ff0000"), 1.0},
}

// heatTable caches the gradient at 256 steps of dissimilarity.
var heatTable = buildHeatTable()

func mustParseHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic("detection: bad gradient color " + s)
	}
	return c
}

// gradientAt blends the two stops surrounding t in Lab space.
func gradientAt(t float64) colorful.Color {
	for i := 0; i < len(heatGradient)-1; i++ {
		c1, c2 := heatGradient[i], heatGradient[i+1]
		if c1.pos <= t && t <= c2.pos {
			t = (t - c1.pos) / (c2.pos - c1.pos)
			return c1.col.BlendLab(c2.col, t).Clamped()
		}
	}
	return heatGradient[len(heatGradient)-1].col
}

func buildHeatTable() [256][3]uint8 {
	var table [256][3]uint8
	for i := range table {
		r, g, b := gradientAt(float64(i) / 255).RGB255()
		table[i] = [3]uint8{r, g, b}
	}
	return table
}

// Render visualises the continuous dissimilarity (1 - score) of m.
//
// With a base image of the map's size, each base pixel is blended towards
// the gradient color with opacity equal to its dissimilarity, so unchanged
// pixels keep their original color and strongly changed pixels turn red.
// With a nil base, or a base of another size, a standalone heatmap is drawn.
//
// Render performs no thresholding.
func Render(m *SimilarityMap, base image.Image) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))

	var src *image.NRGBA
	if base != nil && base.Bounds().Dx() == m.Width && base.Bounds().Dy() == m.Height {
		src = imaging.Clone(base)
	}

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			d := clampFloat(1-m.Values[y*m.Width+x], 0, 1)
			heat := heatTable[int(math.Round(d*255))]
			i := y*out.Stride + x*4

			if src == nil {
				out.Pix[i] = heat[0]
				out.Pix[i+1] = heat[1]
				out.Pix[i+2] = heat[2]
				out.Pix[i+3] = 255
				continue
			}

			j := y*src.Stride + x*4
			out.Pix[i] = blendChannel(src.Pix[j], heat[0], d)
			out.Pix[i+1] = blendChannel(src.Pix[j+1], heat[1], d)
			out.Pix[i+2] = blendChannel(src.Pix[j+2], heat[2], d)
			out.Pix[i+3] = 255
		}
	}
	return out
}

func blendChannel(base, over uint8, alpha float64) uint8 {
	v := float64(base)*(1-alpha) + float64(over)*alpha
	return uint8(math.Round(clampFloat(v, 0, 255)))
}
