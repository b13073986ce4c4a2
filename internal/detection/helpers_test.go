package detection

import (
	"image"
	"image/color"
	"math/rand"
)

// createTestImage creates a solid color test image
func createTestImage(width, height int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createBlockImage creates a solid image with a filled rectangle painted in
// a second color.
func createBlockImage(width, height int, bg, fg color.Color, block image.Rectangle) *image.NRGBA {
	img := createTestImage(width, height, bg)
	for y := block.Min.Y; y < block.Max.Y; y++ {
		for x := block.Min.X; x < block.Max.X; x++ {
			img.Set(x, y, fg)
		}
	}
	return img
}

// createNoiseImage creates a grayscale image of uniform random noise.
func createNoiseImage(width, height int, seed int64) *image.Gray {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.Intn(256))
	}
	return img
}

// createGradientImage creates a horizontal gray ramp with some vertical
// texture so windows have non-zero variance.
func createGradientImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8((x*255/width + (y%5)*8) % 256)
			img.Set(x, y, color.NRGBA{v, v, v, 255})
		}
	}
	return img
}

func mapFromValues(width, height int, values []float64) *SimilarityMap {
	return &SimilarityMap{Width: width, Height: height, Values: values}
}
