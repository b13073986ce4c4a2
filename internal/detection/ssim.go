package detection

import (
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// SimilarityMap holds one structural similarity score in [0,1] per pixel,
// row-major. 1 means identical local structure.
type SimilarityMap struct {
	Width  int
	Height int
	Values []float64
}

// At returns the score at (x, y). No bounds checking is performed.
func (m *SimilarityMap) At(x, y int) float64 {
	return m.Values[y*m.Width+x]
}

// Mean returns the average score over the whole map.
func (m *SimilarityMap) Mean() float64 {
	if len(m.Values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range m.Values {
		sum += v
	}
	return sum / float64(len(m.Values))
}

// Score computes the structural similarity map of two equally sized luma
// grids and the overall similarity percentage (mean score x 100, clamped to
// [0,100], unrounded).
//
// # Algorithm
//
// For every position of a square window of opts.WindowSize pixels that fits
// fully inside the image, the window's means, sample variances and sample
// covariance are read from summed-area tables and combined as
//
//	l  = (2*μa*μb + C1) / (μa² + μb² + C1)
//	cs = (2*σab + C2) / (σa² + σb² + C2)
//	score = clamp(l * cs, 0, 1)
//
// with C1 = (K1*255)² and C2 = (K2*255)². A term whose denominator is zero
// (both windows flat and the stabiliser disabled) counts as 1.
//
// Each pixel then takes the score of the window centred on it. Pixels near the
// border, where no centred window fits, take the score of the nearest window
// that does. An image smaller than the window shrinks the window to fit.
//
// Window scores are independent of one another, so rows of windows are scored
// in parallel bands.
func Score(a, b *Luma, opts Options) (*SimilarityMap, float64, error) {
	if a == nil || b == nil || len(a.Pix) == 0 || len(b.Pix) == 0 {
		return nil, 0, fmt.Errorf("%w: empty luminance grid", ErrInvalidImage)
	}
	if a.Width != b.Width || a.Height != b.Height {
		return nil, 0, fmt.Errorf("%w: %dx%d vs %dx%d",
			ErrDimensionMismatch, a.Width, a.Height, b.Width, b.Height)
	}

	width, height := a.Width, a.Height
	win := opts.WindowSize
	if win < 1 {
		win = DefaultWindowSize
	}
	win = minInt(win, minInt(width, height))

	c1 := math.Pow(opts.K1*255, 2)
	c2 := math.Pow(opts.K2*255, 2)

	tables := newIntegrals(a, b)
	nx := width - win + 1
	ny := height - win + 1
	scores := make([]float64, nx*ny)

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	band := ny / (workers * 4)
	if band < 1 {
		band = 1
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for y0 := 0; y0 < ny; y0 += band {
		y0 := y0
		y1 := minInt(y0+band, ny)
		g.Go(func() error {
			for ty := y0; ty < y1; ty++ {
				for tx := 0; tx < nx; tx++ {
					s := tables.windowScore(tx, ty, win, c1, c2)
					if math.IsNaN(s) || math.IsInf(s, 0) {
						return fmt.Errorf("%w: non-finite score at window (%d,%d)", ErrComputation, tx, ty)
					}
					scores[ty*nx+tx] = s
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	r := win / 2
	m := &SimilarityMap{Width: width, Height: height, Values: make([]float64, width*height)}
	for y := 0; y < height; y++ {
		ty := clamp(y-r, 0, ny-1)
		for x := 0; x < width; x++ {
			tx := clamp(x-r, 0, nx-1)
			m.Values[y*width+x] = scores[ty*nx+tx]
		}
	}

	mean := m.Mean()
	if math.IsNaN(mean) || math.IsInf(mean, 0) {
		return nil, 0, fmt.Errorf("%w: non-finite mean similarity", ErrComputation)
	}
	return m, clampFloat(mean*100, 0, 100), nil
}

// integrals holds summed-area tables for a, b, a², b² and a*b.
// Each table is (width+1) x (height+1) with a zero first row and column.
type integrals struct {
	stride           int
	a, b, aa, bb, ab []float64
}

func newIntegrals(a, b *Luma) *integrals {
	w, h := a.Width, a.Height
	stride := w + 1
	size := stride * (h + 1)
	t := &integrals{
		stride: stride,
		a:      make([]float64, size),
		b:      make([]float64, size),
		aa:     make([]float64, size),
		bb:     make([]float64, size),
		ab:     make([]float64, size),
	}
	for y := 0; y < h; y++ {
		var ra, rb, raa, rbb, rab float64
		for x := 0; x < w; x++ {
			va := a.Pix[y*w+x]
			vb := b.Pix[y*w+x]
			ra += va
			rb += vb
			raa += va * va
			rbb += vb * vb
			rab += va * vb

			i := (y+1)*stride + x + 1
			up := y*stride + x + 1
			t.a[i] = t.a[up] + ra
			t.b[i] = t.b[up] + rb
			t.aa[i] = t.aa[up] + raa
			t.bb[i] = t.bb[up] + rbb
			t.ab[i] = t.ab[up] + rab
		}
	}
	return t
}

// boxSum returns the sum of table over the size x size window at (x, y).
func (t *integrals) boxSum(table []float64, x, y, size int) float64 {
	x1, y1 := x+size, y+size
	return table[y1*t.stride+x1] - table[y*t.stride+x1] - table[y1*t.stride+x] + table[y*t.stride+x]
}

// windowScore computes the clamped structural similarity of one window.
// The expression is symmetric in a and b term by term, so swapping the
// inputs yields bit-identical scores.
func (t *integrals) windowScore(x, y, size int, c1, c2 float64) float64 {
	n := float64(size * size)
	sa := t.boxSum(t.a, x, y, size)
	sb := t.boxSum(t.b, x, y, size)
	saa := t.boxSum(t.aa, x, y, size)
	sbb := t.boxSum(t.bb, x, y, size)
	sab := t.boxSum(t.ab, x, y, size)

	norm := n - 1
	if norm < 1 {
		norm = 1
	}
	muA := sa / n
	muB := sb / n
	varA := (saa - sa*sa/n) / norm
	varB := (sbb - sb*sb/n) / norm
	cov := (sab - sa*sb/n) / norm

	// Summed-area cancellation can leave tiny negative variances on flat windows.
	if varA < 0 {
		varA = 0
	}
	if varB < 0 {
		varB = 0
	}
	if varA == 0 || varB == 0 {
		cov = 0
	}

	l := 1.0
	if den := muA*muA + muB*muB + c1; den != 0 {
		l = (2*(muA*muB) + c1) / den
	}
	cs := 1.0
	if den := varA + varB + c2; den != 0 {
		cs = (2*cov + c2) / den
	}
	return clampFloat(l*cs, 0, 1)
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

func clampFloat(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
