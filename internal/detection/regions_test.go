package detection

import (
	"image"
	"reflect"
	"testing"
)

// maskMap builds a similarity map from a picture: '#' is a changed pixel
// (score 0), anything else unchanged (score 1).
func maskMap(rows ...string) *SimilarityMap {
	h := len(rows)
	w := len(rows[0])
	values := make([]float64, w*h)
	for y, row := range rows {
		for x, c := range row {
			if c == '#' {
				values[y*w+x] = 0
			} else {
				values[y*w+x] = 1
			}
		}
	}
	return mapFromValues(w, h, values)
}

func TestThreshold(t *testing.T) {
	m := mapFromValues(4, 1, []float64{1, 0.71, 0.7, 0.2})

	mask := Threshold(m, 0.3)
	// 1-0.7 rounds to either side of 0.3, so index 2 is not checked.
	if mask.At(0, 0) || mask.At(1, 0) {
		t.Error("similar pixels should not be marked")
	}
	if !mask.At(3, 0) {
		t.Error("dissimilar pixel should be marked")
	}
	if mask.At(-1, 0) || mask.At(4, 0) || mask.At(0, 1) {
		t.Error("out-of-range coordinates should report false")
	}
	if mask.Width() != 4 || mask.Height() != 1 {
		t.Errorf("mask size: got %dx%d", mask.Width(), mask.Height())
	}
}

func TestLabel_EightConnected(t *testing.T) {
	m := maskMap(
		"#.....",
		".#....",
		"..#...",
		"......",
		"....##",
	)

	regions, discarded := Label(Threshold(m, 0.3), 1)
	if discarded != 0 {
		t.Errorf("discarded: got %d, want 0", discarded)
	}
	if len(regions) != 2 {
		t.Fatalf("got %d regions, want 2: %+v", len(regions), regions)
	}

	// The diagonal is one component
	want := ChangedRegion{Rank: 1, X: 0, Y: 0, Width: 3, Height: 3, Area: 3}
	if regions[0] != want {
		t.Errorf("first region: got %+v, want %+v", regions[0], want)
	}
	want = ChangedRegion{Rank: 2, X: 4, Y: 4, Width: 2, Height: 1, Area: 2}
	if regions[1] != want {
		t.Errorf("second region: got %+v, want %+v", regions[1], want)
	}
}

func TestLabel_AreaCountsPixelsNotBox(t *testing.T) {
	m := maskMap(
		"#####",
		"#...#",
		"#...#",
		"#####",
	)

	regions, _ := Label(Threshold(m, 0.3), 1)
	if len(regions) != 1 {
		t.Fatalf("got %d regions, want 1", len(regions))
	}
	r := regions[0]
	if r.Width != 5 || r.Height != 4 {
		t.Errorf("box: got %dx%d, want 5x4", r.Width, r.Height)
	}
	if r.Area != 14 {
		t.Errorf("area: got %d, want 14", r.Area)
	}
}

func TestLabel_MinArea(t *testing.T) {
	m := maskMap(
		"##....#",
		"##.....",
		".......",
		"...###.",
	)

	regions, discarded := Label(Threshold(m, 0.3), 3)
	if len(regions) != 2 {
		t.Fatalf("got %d regions, want 2", len(regions))
	}
	if discarded != 1 {
		t.Errorf("discarded: got %d, want 1", discarded)
	}
}

func TestLabel_TieBreak(t *testing.T) {
	// Four equal-area blobs: ordered by y, then x.
	m := maskMap(
		"......##",
		"........",
		"##....##",
		"........",
		"...##...",
	)

	regions, _ := Label(Threshold(m, 0.3), 1)
	got := make([]image.Point, len(regions))
	for i, r := range regions {
		got[i] = image.Pt(r.X, r.Y)
		if r.Rank != i+1 {
			t.Errorf("rank %d at index %d", r.Rank, i)
		}
	}
	want := []image.Point{{6, 0}, {0, 2}, {6, 2}, {3, 4}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order: got %v, want %v", got, want)
	}
}

func TestLabel_LargerFirst(t *testing.T) {
	m := maskMap(
		"#.......",
		"........",
		"....####",
		"....####",
	)

	regions, _ := Label(Threshold(m, 0.3), 1)
	if len(regions) != 2 || regions[0].Area != 8 || regions[1].Area != 1 {
		t.Fatalf("unexpected regions: %+v", regions)
	}
}

func TestLabel_WholeImage(t *testing.T) {
	// A change covering every pixel is labelled without recursion.
	const w, h = 600, 400
	m := mapFromValues(w, h, make([]float64, w*h))

	regions, _ := Label(Threshold(m, 0.3), 1)
	if len(regions) != 1 {
		t.Fatalf("got %d regions, want 1", len(regions))
	}
	r := regions[0]
	if r.X != 0 || r.Y != 0 || r.Width != w || r.Height != h || r.Area != w*h {
		t.Errorf("region: got %+v", r)
	}
}

func TestLabel_Empty(t *testing.T) {
	m := mapFromValues(3, 3, []float64{1, 1, 1, 1, 1, 1, 1, 1, 1})
	regions, discarded := Label(Threshold(m, 0.3), 1)
	if regions == nil || len(regions) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", regions)
	}
	if discarded != 0 {
		t.Errorf("discarded: got %d", discarded)
	}
}

func TestExtractRegions_TopN(t *testing.T) {
	m := maskMap(
		"###.##.#",
		"........",
		"####....",
	)

	ext := ExtractRegions(m, 0.3, 1, 2)
	if len(ext.Regions) != 2 {
		t.Fatalf("got %d listed regions, want 2", len(ext.Regions))
	}
	if ext.RegionCount != 4 {
		t.Errorf("RegionCount: got %d, want 4", ext.RegionCount)
	}
	if ext.TotalChangedArea != 10 {
		t.Errorf("TotalChangedArea: got %d, want 10", ext.TotalChangedArea)
	}
	if ext.Regions[0].Area != 4 || ext.Regions[1].Area != 3 {
		t.Errorf("listed areas: %d, %d", ext.Regions[0].Area, ext.Regions[1].Area)
	}
	// The mask keeps pixels of regions beyond the cut
	if ext.Mask.Count() != 10 {
		t.Errorf("mask count: got %d, want 10", ext.Mask.Count())
	}
}

func TestExtractRegions_MonotonicInThreshold(t *testing.T) {
	a := createNoiseImage(80, 60, 21)
	b := createNoiseImage(80, 60, 22)
	opts := DefaultOptions()
	n, err := Normalize(a, b, opts)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	m, _, err := Score(n.Before, n.After, opts)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	thresholds := []float64{0, 0.1, 0.3, 0.5, 0.7, 0.9, 0.95, 1}
	var prev *Extraction
	for _, th := range thresholds {
		ext := ExtractRegions(m, th, 10, 100)
		if prev != nil {
			if ext.TotalChangedArea > prev.TotalChangedArea {
				t.Errorf("threshold %v: area %d grew from %d", th, ext.TotalChangedArea, prev.TotalChangedArea)
			}
			for y := 0; y < m.Height; y++ {
				for x := 0; x < m.Width; x++ {
					if ext.Mask.At(x, y) && !prev.Mask.At(x, y) {
						t.Fatalf("threshold %v: pixel (%d,%d) appeared", th, x, y)
					}
				}
			}
		}
		prev = ext
	}

	if prev.Mask.Count() != 0 {
		t.Errorf("threshold 1 should mark nothing, got %d", prev.Mask.Count())
	}
}

func TestChangedRegion_Bounds(t *testing.T) {
	r := ChangedRegion{X: 3, Y: 4, Width: 5, Height: 6}
	if got := r.Bounds(); got != image.Rect(3, 4, 8, 10) {
		t.Errorf("Bounds: got %v", got)
	}
}
