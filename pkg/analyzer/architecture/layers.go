package architecture

import (
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/panbanda/strata/pkg/models"
	"gonum.org/v1/gonum/stat"
)

// bucket maps path keywords to a layer name.
type bucket struct {
	name     string
	keywords []string
}

var (
	mvcBuckets = []bucket{
		{"Controllers", []string{"controller"}},
		{"Models", []string{"model", "entity", "entities"}},
		{"Views", []string{"view", "component", "ui", "template"}},
		{"Services", []string{"service"}},
	}
	cleanBuckets = []bucket{
		{"Domain", []string{"domain", "entity", "entities"}},
		{"Application", []string{"application", "usecase", "use_case"}},
		{"Infrastructure", []string{"infrastructure", "repository", "persistence"}},
		{"Presentation", []string{"presentation", "controller", "api", "ui"}},
	}
	hexagonalBuckets = []bucket{
		{"Core", []string{"core", "domain"}},
		{"Ports", []string{"port"}},
		{"Adapters", []string{"adapter"}},
	}
	layeredBuckets = []bucket{
		{"Presentation", []string{"presentation", "api", "controller"}},
		{"Business", []string{"business", "logic", "service"}},
		{"Data", []string{"data", "repository", "dao"}},
	}
	genericBuckets = []bucket{
		{"API", []string{"api", "controller", "route", "handler"}},
		{"Logic", []string{"service", "logic", "core"}},
		{"Data", []string{"model", "repository", "data", "db"}},
		{"UI", []string{"view", "component", "ui", "page"}},
	}
)

// bucketsFor returns the candidate layers for a pattern.
func bucketsFor(p Pattern) []bucket {
	switch p {
	case PatternMVC:
		return mvcBuckets
	case PatternClean:
		return cleanBuckets
	case PatternHexagonal:
		return hexagonalBuckets
	case PatternLayered:
		return layeredBuckets
	default:
		return genericBuckets
	}
}

// expectedLayers is the layer count a full implementation of p would have.
func expectedLayers(p Pattern) int {
	switch p {
	case PatternHexagonal, PatternLayered:
		return 3
	default:
		return 4
	}
}

// membership holds the file indices assigned to each candidate layer.
type membership struct {
	buckets []bucket
	sets    []*roaring.Bitmap
}

// assignLayers puts every file into the first bucket one of whose keywords
// occurs in its lower-cased path.
func assignLayers(files []models.ParsedFile, buckets []bucket) *membership {
	m := &membership{buckets: buckets, sets: make([]*roaring.Bitmap, len(buckets))}
	for i := range m.sets {
		m.sets[i] = roaring.New()
	}
	for idx := range files {
		path := strings.ToLower(files[idx].FilePath)
		for b, bk := range buckets {
			if containsAny(path, bk.keywords) {
				m.sets[b].Add(uint32(idx))
				break
			}
		}
	}
	return m
}

// populated returns the number of candidate layers holding at least one file.
func (m *membership) populated() int {
	n := 0
	for _, s := range m.sets {
		if !s.IsEmpty() {
			n++
		}
	}
	return n
}

// unlayered counts files assigned to no layer.
func (m *membership) unlayered(total int) int {
	all := roaring.New()
	all.AddRange(0, uint64(total))
	all.AndNot(roaring.FastOr(m.sets...))
	return int(all.GetCardinality())
}

// layerOf returns the name of the first layer sharing a file with files, or "".
func (m *membership) layerOf(files *roaring.Bitmap) string {
	for i, s := range m.sets {
		if s.Intersects(files) {
			return m.buckets[i].name
		}
	}
	return ""
}

// layers builds the non-empty layers in bucket order.
func (m *membership) layers(files []models.ParsedFile) []Layer {
	layers := []Layer{}
	for i, s := range m.sets {
		if s.IsEmpty() {
			continue
		}
		layer := Layer{Name: m.buckets[i].name, Files: []string{}}
		var scores []float64
		for _, idx := range s.ToArray() {
			f := &files[idx]
			layer.Files = append(layer.Files, f.FilePath)
			layer.LinesOfCode += f.LinesOfCode
			for _, el := range f.Callables() {
				scores = append(scores, float64(max(el.Complexity, 1)))
			}
		}
		if len(scores) > 0 {
			layer.AverageComplexity = stat.Mean(scores, nil)
		}
		layer.Complexity = rate(layer.AverageComplexity)
		layers = append(layers, layer)
	}
	return layers
}

func rate(mean float64) ComplexityRating {
	switch {
	case mean > 15:
		return RatingHigh
	case mean > 8:
		return RatingMedium
	default:
		return RatingLow
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
