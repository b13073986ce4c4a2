package detection

import (
	"fmt"
	"math"
	"strings"

	"github.com/ironsheep/image-change-mcp/internal/imaging"
)

// summaryRegions is how many regions the text summary lists.
const summaryRegions = 5

// Report is the serialized outcome of a comparison.
type Report struct {
	// SimilarityPercent is rounded to one decimal place.
	SimilarityPercent float64     `json:"similarityPercent"`
	ChangeLevel       ChangeLevel `json:"changeLevel"`
	ChangeDescription string      `json:"changeDescription"`

	// DiffImage holds the encoded diff; JSON carries it as base64.
	DiffImage         []byte `json:"diffImage"`
	DiffImageMimeType string `json:"diffImageMimeType"`

	Regions          []ChangedRegion `json:"regions"`
	RegionCount      int             `json:"regionCount"`
	TotalChangedArea int             `json:"totalChangedArea"`

	Width   int  `json:"width"`
	Height  int  `json:"height"`
	Resized bool `json:"resized"`

	Metadata *Metadata `json:"metadata,omitempty"`
	Summary  string    `json:"summary"`
}

// Compare decodes two raw images and produces a complete report. Data that
// cannot be decoded fails with ErrInvalidImage. The diff image is encoded in
// the "after" image's format where possible (see imaging.OutputFormat).
func Compare(before, after []byte, opts Options) (*Report, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	b, err := imaging.Decode(before)
	if err != nil {
		return nil, fmt.Errorf("%w: before: %v", ErrInvalidImage, err)
	}
	a, err := imaging.Decode(after)
	if err != nil {
		return nil, fmt.Errorf("%w: after: %v", ErrInvalidImage, err)
	}
	return CompareSources(b, a, opts)
}

// CompareSources is Compare for inputs that are already decoded.
func CompareSources(before, after *imaging.Source, opts Options) (*Report, error) {
	if before == nil || after == nil {
		return nil, fmt.Errorf("%w: missing source", ErrInvalidImage)
	}

	res, err := Detect(before.Image, after.Image, opts)
	if err != nil {
		return nil, err
	}
	return NewReport(res, after.Format, opts)
}

// NewReport encodes res into a Report, writing the diff in the output format
// derived from format.
func NewReport(res *Result, format imaging.Format, opts Options) (*Report, error) {
	quality := opts.JPEGQuality
	if quality == 0 {
		quality = DefaultJPEGQuality
	}
	data, out, err := imaging.EncodeBytes(res.Diff, format, quality)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrComputation, err)
	}

	r := &Report{
		SimilarityPercent: RoundPercent(res.SimilarityPercent),
		ChangeLevel:       res.Level,
		ChangeDescription: res.Level.Description(),
		DiffImage:         data,
		DiffImageMimeType: out.MimeType(),
		Regions:           res.Extraction.Regions,
		RegionCount:       res.Extraction.RegionCount,
		TotalChangedArea:  res.Extraction.TotalChangedArea,
		Width:             res.Width,
		Height:            res.Height,
		Resized:           res.Resized,
		Metadata:          opts.Metadata.resolved(),
	}
	if r.Regions == nil {
		r.Regions = []ChangedRegion{}
	}
	r.Summary = r.summary()
	return r, nil
}

// RoundPercent rounds a similarity percentage to one decimal place.
func RoundPercent(p float64) float64 {
	return math.Round(p*10) / 10
}

// summary renders the report as plain text for people and chat clients.
func (r *Report) summary() string {
	var b strings.Builder

	b.WriteString("CHANGE DETECTION REPORT\n")
	if md := r.Metadata; md != nil {
		if md.Location != "" {
			fmt.Fprintf(&b, "Location: %s\n", md.Location)
		}
		if md.BeforeDate != "" || md.AfterDate != "" {
			fmt.Fprintf(&b, "Dates: %s -> %s\n", orUnknown(md.BeforeDate), orUnknown(md.AfterDate))
		}
		if md.TimeSpanDays != nil {
			fmt.Fprintf(&b, "Time span: %d days (%.1f years)\n", *md.TimeSpanDays, float64(*md.TimeSpanDays)/365.25)
		}
	}

	fmt.Fprintf(&b, "Compared at: %dx%d", r.Width, r.Height)
	if r.Resized {
		b.WriteString(" (resized to common dimensions)")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Structural similarity: %.1f%%\n", r.SimilarityPercent)
	fmt.Fprintf(&b, "Change level: %s (%s)\n", r.ChangeLevel, r.ChangeDescription)
	fmt.Fprintf(&b, "Changed regions: %d\n", r.RegionCount)
	fmt.Fprintf(&b, "Total changed area: %d pixels\n", r.TotalChangedArea)

	for i, reg := range r.Regions {
		if i == summaryRegions {
			fmt.Fprintf(&b, "  ... %d more\n", len(r.Regions)-summaryRegions)
			break
		}
		fmt.Fprintf(&b, "  #%d at (%d,%d) %dx%d, %d pixels\n",
			reg.Rank, reg.X, reg.Y, reg.Width, reg.Height, reg.Area)
	}

	b.WriteString(r.ChangeLevel.Interpretation())
	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
