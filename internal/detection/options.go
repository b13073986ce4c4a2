package detection

import (
	"fmt"
	"image/color"
	"time"
)

// Default parameter values used by DefaultOptions.
const (
	DefaultThreshold   = 0.3
	DefaultTopN        = 10
	DefaultMinArea     = 100
	DefaultWindowSize  = 7
	DefaultK1          = 0.01
	DefaultK2          = 0.03
	DefaultJPEGQuality = 90

	// MinWindowSize and MaxWindowSize bound the structural similarity window.
	MinWindowSize = 3
	MaxWindowSize = 15
)

// dateLayout is the accepted layout for Metadata dates.
const dateLayout = "2006-01-02"

// Options controls a single comparison. Every parameter the detector uses is
// carried here; nothing is read from the environment.
type Options struct {
	// Threshold is the dissimilarity (1 - similarity) above which a pixel is
	// marked as changed. Range [0, 1].
	Threshold float64

	// TopN is the maximum number of regions listed in the report (>= 1).
	TopN int

	// MinArea discards connected components with fewer mask pixels (>= 1).
	MinArea int

	// WindowSize is the side of the square similarity window. Odd, 3..15.
	WindowSize int

	// K1 and K2 scale the luminance and contrast stabilisers
	// C1 = (K1*255)^2 and C2 = (K2*255)^2.
	K1 float64
	K2 float64

	// BlurSigma applies a Gaussian pre-blur to both images when > 0.
	BlurSigma float64

	// AllowResize lets the normalizer resize inputs of different size.
	// When false such inputs fail with ErrDimensionMismatch.
	AllowResize bool

	// Annotate draws the reported region boxes and ranks onto the diff image.
	Annotate bool

	// BoxColor outlines annotated regions; the zero value selects cyan.
	BoxColor color.NRGBA

	// Workers bounds the goroutines used for window scoring; 0 uses GOMAXPROCS.
	Workers int

	// JPEGQuality is used when the diff image is encoded as JPEG (1..100).
	JPEGQuality int

	// Metadata optionally describes when and where the images were taken.
	Metadata *Metadata
}

// Metadata describes the capture context of a comparison.
type Metadata struct {
	BeforeDate string `json:"beforeDate,omitempty"` // YYYY-MM-DD
	AfterDate  string `json:"afterDate,omitempty"`  // YYYY-MM-DD
	Location   string `json:"location,omitempty"`

	// TimeSpanDays is filled in by Compare when both dates are present.
	TimeSpanDays *int `json:"timeSpanDays,omitempty"`
}

// DefaultOptions returns the options used when a caller overrides nothing.
func DefaultOptions() Options {
	return Options{
		Threshold:   DefaultThreshold,
		TopN:        DefaultTopN,
		MinArea:     DefaultMinArea,
		WindowSize:  DefaultWindowSize,
		K1:          DefaultK1,
		K2:          DefaultK2,
		AllowResize: true,
		JPEGQuality: DefaultJPEGQuality,
	}
}

// Validate reports the first out-of-range option as ErrInvalidOptions.
func (o Options) Validate() error {
	if o.Threshold < 0 || o.Threshold > 1 || o.Threshold != o.Threshold {
		return fmt.Errorf("%w: threshold %v outside [0,1]", ErrInvalidOptions, o.Threshold)
	}
	if o.TopN < 1 {
		return fmt.Errorf("%w: top_n must be at least 1, got %d", ErrInvalidOptions, o.TopN)
	}
	if o.MinArea < 1 {
		return fmt.Errorf("%w: min_area must be at least 1, got %d", ErrInvalidOptions, o.MinArea)
	}
	if o.WindowSize < MinWindowSize || o.WindowSize > MaxWindowSize || o.WindowSize%2 == 0 {
		return fmt.Errorf("%w: window_size must be odd and within %d..%d, got %d",
			ErrInvalidOptions, MinWindowSize, MaxWindowSize, o.WindowSize)
	}
	if o.K1 < 0 || o.K2 < 0 {
		return fmt.Errorf("%w: stabiliser constants must not be negative", ErrInvalidOptions)
	}
	if o.BlurSigma < 0 {
		return fmt.Errorf("%w: blur_sigma must not be negative", ErrInvalidOptions)
	}
	if o.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidOptions)
	}
	if o.JPEGQuality < 1 || o.JPEGQuality > 100 {
		return fmt.Errorf("%w: jpeg quality must be within 1..100, got %d", ErrInvalidOptions, o.JPEGQuality)
	}
	if o.Metadata != nil {
		if _, _, err := o.Metadata.parseDates(); err != nil {
			return err
		}
	}
	return nil
}

// parseDates returns the parsed dates; a zero time means the date was not given.
func (m *Metadata) parseDates() (before, after time.Time, err error) {
	if m.BeforeDate != "" {
		before, err = time.Parse(dateLayout, m.BeforeDate)
		if err != nil {
			return before, after, fmt.Errorf("%w: before date %q is not YYYY-MM-DD", ErrInvalidOptions, m.BeforeDate)
		}
	}
	if m.AfterDate != "" {
		after, err = time.Parse(dateLayout, m.AfterDate)
		if err != nil {
			return before, after, fmt.Errorf("%w: after date %q is not YYYY-MM-DD", ErrInvalidOptions, m.AfterDate)
		}
	}
	return before, after, nil
}

// resolved returns a copy of m with TimeSpanDays filled in when both dates parse.
func (m *Metadata) resolved() *Metadata {
	if m == nil {
		return nil
	}
	out := *m
	out.TimeSpanDays = nil
	before, after, err := m.parseDates()
	if err == nil && !before.IsZero() && !after.IsZero() {
		days := int(after.Sub(before).Hours() / 24)
		out.TimeSpanDays = &days
	}
	return &out
}
