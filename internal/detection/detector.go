package detection

import (
	"image"
	"image/color"

	"github.com/ironsheep/image-change-mcp/internal/imaging"
)

// Result is the in-memory outcome of one comparison.
type Result struct {
	// Width and Height are the normalized dimensions every output shares.
	Width  int
	Height int

	// Resized reports whether the inputs had to be brought to a common size.
	Resized bool

	Map *SimilarityMap

	// SimilarityPercent is the unrounded mean similarity x 100.
	SimilarityPercent float64
	Level             ChangeLevel

	Extraction *Extraction

	// After is the normalized "after" image; region bounds index into it.
	After *image.NRGBA

	// Diff is the rendered dissimilarity overlay on the "after" image.
	Diff *image.NRGBA
}

// Detect runs the full pipeline on two decoded images: normalize, score,
// extract regions, classify and render. It fails before any computation when
// opts or either image is invalid, and never returns a partial Result.
func Detect(before, after image.Image, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	norm, err := Normalize(before, after, opts)
	if err != nil {
		return nil, err
	}

	m, percent, err := Score(norm.Before, norm.After, opts)
	if err != nil {
		return nil, err
	}

	ext := ExtractRegions(m, opts.Threshold, opts.MinArea, opts.TopN)

	diff := Render(m, norm.AfterColor)
	if opts.Annotate && len(ext.Regions) > 0 {
		boxes := make([]image.Rectangle, len(ext.Regions))
		for i, r := range ext.Regions {
			boxes[i] = r.Bounds()
		}
		outline := opts.BoxColor
		if outline == (color.NRGBA{}) {
			outline = imaging.DefaultBoxColor
		}
		imaging.DrawRegions(diff, boxes, outline)
	}

	return &Result{
		Width:             norm.Width,
		Height:            norm.Height,
		Resized:           norm.Resized,
		Map:               m,
		SimilarityPercent: percent,
		Level:             Classify(percent),
		Extraction:        ext,
		After:             norm.AfterColor,
		Diff:              diff,
	}, nil
}
