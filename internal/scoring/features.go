package scoring

import (
	"regexp"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/tensorplex-labs/pridano/internal/core"
)

const (
	// ClassSaturation is the class attribute count at which density reaches 1.0.
	ClassSaturation = 40.0

	featureCount = 3
)

var (
	classAttrRe   = regexp.MustCompile(`(?i)\bclass\s*=`)
	coloredBgRe   = regexp.MustCompile(`\bbg-(?:[a-z]+-[5-9]00|black)\b`)
	a11yMarkerRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\baria-[a-z]+\s*=`),
		regexp.MustCompile(`(?i)\balt\s*=`),
	}
)

// Features are the shallow textual signals every scorer reads, each in [0,1].
type Features struct {
	Accessibility float64
	ClassDensity  float64
	Contrast      float64
}

// Vector returns the features in weight order.
func (f Features) Vector() []float64 {
	return []float64{f.Accessibility, f.ClassDensity, f.Contrast}
}

// ExtractFeatures computes the signals for a file set. Only index.html and
// style.css are read.
func ExtractFeatures(files core.FileSet) Features {
	html := files.Index()
	css := files.Get(core.StyleFile)

	var f Features
	for _, re := range a11yMarkerRes {
		if re.MatchString(html) {
			f.Accessibility = 1
			break
		}
	}

	classes := float64(len(classAttrRe.FindAllStringIndex(html, -1)))
	f.ClassDensity = floats.Min([]float64{classes / ClassSaturation, 1})

	if hasLightTextOnColor(html, css) {
		f.Contrast = 1
	}
	return f
}

func hasLightTextOnColor(html, css string) bool {
	if !strings.Contains(html, "text-white") {
		return false
	}
	if strings.Contains(html, "gradient") || coloredBgRe.MatchString(html) {
		return true
	}
	return strings.Contains(css, "gradient")
}
