package detection

import (
	"image"
	"sort"
)

// ChangeMask marks the pixels whose dissimilarity exceeds a threshold.
// It is derived from a SimilarityMap and is never modified after Threshold
// returns it.
type ChangeMask struct {
	width  int
	height int
	bits   []bool
}

// Width returns the mask width in pixels.
func (m *ChangeMask) Width() int { return m.width }

// Height returns the mask height in pixels.
func (m *ChangeMask) Height() int { return m.height }

// At reports whether (x, y) is marked as changed. Out-of-range coordinates
// report false.
func (m *ChangeMask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return false
	}
	return m.bits[y*m.width+x]
}

// Count returns the number of changed pixels.
func (m *ChangeMask) Count() int {
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}
	return n
}

// ChangedRegion is the bounding box of one connected group of changed pixels.
//
// Area counts the changed pixels of the group, which is at most
// Width*Height for irregular shapes.
type ChangedRegion struct {
	Rank   int `json:"rank"` // 1-based position after sorting
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
	Area   int `json:"area"`
}

// Bounds returns the region as an image.Rectangle.
func (r ChangedRegion) Bounds() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Extraction is the output of the region extractor.
type Extraction struct {
	// Mask keeps every thresholded pixel, including pixels of discarded
	// components and of regions beyond the top-N cut.
	Mask *ChangeMask

	// Regions holds at most topN regions, ranked.
	Regions []ChangedRegion

	// RegionCount is the number of regions that survived the area floor.
	RegionCount int

	// TotalChangedArea sums the area of every surviving region.
	TotalChangedArea int

	// Discarded is the number of components dropped by the area floor.
	Discarded int
}

// ExtractRegions thresholds m, labels 8-connected components, drops those
// smaller than minArea, and returns the topN largest.
//
// A pixel is changed when 1 - score > threshold. Regions are ordered by area
// descending; equal areas are ordered by Y, then X, then the order in which
// a raster scan first reaches them, so identical input always produces an
// identical list.
func ExtractRegions(m *SimilarityMap, threshold float64, minArea, topN int) *Extraction {
	mask := Threshold(m, threshold)
	all, discarded := Label(mask, minArea)

	total := 0
	for _, r := range all {
		total += r.Area
	}

	top := all
	if topN >= 0 && len(top) > topN {
		top = top[:topN]
	}

	return &Extraction{
		Mask:             mask,
		Regions:          top,
		RegionCount:      len(all),
		TotalChangedArea: total,
		Discarded:        discarded,
	}
}

// Threshold marks every pixel of m whose dissimilarity exceeds threshold.
func Threshold(m *SimilarityMap, threshold float64) *ChangeMask {
	mask := &ChangeMask{width: m.Width, height: m.Height, bits: make([]bool, len(m.Values))}
	for i, v := range m.Values {
		mask.bits[i] = 1-v > threshold
	}
	return mask
}

// Label groups the mask's pixels into 8-connected components and returns
// those with at least minArea pixels, ranked, plus the number discarded.
//
// Components are grown with an explicit stack rather than recursion, so a
// single change covering the whole image is handled without deep calls.
func Label(mask *ChangeMask, minArea int) ([]ChangedRegion, int) {
	w, h := mask.width, mask.height
	visited := make([]bool, len(mask.bits))
	regions := make([]ChangedRegion, 0)
	discarded := 0
	stack := make([]int, 0, 64)

	for start, on := range mask.bits {
		if !on || visited[start] {
			continue
		}

		minX, minY := w, h
		maxX, maxY := -1, -1
		area := 0

		visited[start] = true
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			px, py := p%w, p/w
			area++
			if px < minX {
				minX = px
			}
			if px > maxX {
				maxX = px
			}
			if py < minY {
				minY = py
			}
			if py > maxY {
				maxY = py
			}

			// 8-connected neighbors
			for dy := -1; dy <= 1; dy++ {
				ny := py + dy
				if ny < 0 || ny >= h {
					continue
				}
				for dx := -1; dx <= 1; dx++ {
					nx := px + dx
					if (dx == 0 && dy == 0) || nx < 0 || nx >= w {
						continue
					}
					n := ny*w + nx
					if mask.bits[n] && !visited[n] {
						visited[n] = true
						stack = append(stack, n)
					}
				}
			}
		}

		if area < minArea {
			discarded++
			continue
		}
		regions = append(regions, ChangedRegion{
			X:      minX,
			Y:      minY,
			Width:  maxX - minX + 1,
			Height: maxY - minY + 1,
			Area:   area,
		})
	}

	sort.SliceStable(regions, func(i, j int) bool {
		if regions[i].Area != regions[j].Area {
			return regions[i].Area > regions[j].Area
		}
		if regions[i].Y != regions[j].Y {
			return regions[i].Y < regions[j].Y
		}
		return regions[i].X < regions[j].X
	})
	for i := range regions {
		regions[i].Rank = i + 1
	}

	return regions, discarded
}
