package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// minTextHeight is the crop height below which a region is upscaled before
// recognition; Tesseract misses glyphs much smaller than this.
const minTextHeight = 48

// maxUpscale caps the upscale factor applied to small regions.
const maxUpscale = 4

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Word is one recognised word with its location and OCR confidence.
type Word struct {
	// Text is the recognized text content.
	Text string `json:"text"`

	// Confidence is the OCR confidence score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Bounds locates the word in the image the region was cut from.
	Bounds Bounds `json:"bounds"`
}

// RegionText is the text read from one rectangular region of an image.
type RegionText struct {
	// Bounds is the region that was read, clipped to the image.
	Bounds Bounds `json:"bounds"`

	// Text is the recognized text with surrounding whitespace trimmed.
	Text string `json:"text"`

	// Confidence is the mean word confidence, or 0 when no words were found.
	Confidence float64 `json:"confidence"`

	// Words may be empty when Tesseract cannot report word boxes; Text is
	// still filled in.
	Words []Word `json:"words"`
}

// ReadRegion performs OCR on a rectangular region of an image.
//
// Parameters:
//   - img: The source image (already decoded).
//   - r: The region to read; it is clipped to the image bounds.
//   - language: Tesseract language code (e.g., "eng"). The corresponding
//     language data must be installed on the system.
//
// Regions shorter than 48 pixels are upscaled (Lanczos, up to 4x) before
// recognition. Word bounds are mapped back to the original image coordinates,
// so a word found at (10, 20) inside a region starting at (100, 50) is
// reported at (110, 70).
func ReadRegion(img image.Image, r image.Rectangle, language string) (*RegionText, error) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return nil, fmt.Errorf("region outside image bounds")
	}

	crop := imaging.Crop(img, r)
	scale := 1
	if r.Dy() < minTextHeight {
		scale = (minTextHeight + r.Dy() - 1) / r.Dy()
		if scale > maxUpscale {
			scale = maxUpscale
		}
		crop = imaging.Resize(crop, r.Dx()*scale, r.Dy()*scale, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, crop); err != nil {
		return nil, fmt.Errorf("failed to encode region image: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	result := &RegionText{
		Bounds: Bounds{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y},
		Text:   strings.TrimSpace(text),
		Words:  []Word{},
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		// Return just text if boxes fail
		return result, nil
	}

	var confSum float64
	for _, box := range boxes {
		if strings.TrimSpace(box.Word) == "" {
			continue
		}
		conf := float64(box.Confidence) / 100.0
		confSum += conf
		result.Words = append(result.Words, Word{
			Text:       box.Word,
			Confidence: conf,
			Bounds: Bounds{
				X1: r.Min.X + box.Box.Min.X/scale,
				Y1: r.Min.Y + box.Box.Min.Y/scale,
				X2: r.Min.X + box.Box.Max.X/scale,
				Y2: r.Min.Y + box.Box.Max.Y/scale,
			},
		})
	}
	if len(result.Words) > 0 {
		result.Confidence = confSum / float64(len(result.Words))
	}

	return result, nil
}

// ReadRegions reads every region in order, stopping at the first failure.
func ReadRegions(img image.Image, regions []image.Rectangle, language string) ([]RegionText, error) {
	out := make([]RegionText, 0, len(regions))
	for i, r := range regions {
		rt, err := ReadRegion(img, r, language)
		if err != nil {
			return nil, fmt.Errorf("failed to read region %d: %w", i+1, err)
		}
		out = append(out, *rt)
	}
	return out, nil
}
