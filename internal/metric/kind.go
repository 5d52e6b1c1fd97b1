package metric

import (
	"fmt"
	"image"
	"log"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

// Family tells which direction of a score means "more similar".
type Family int

const (
	// FamilyDistance scores are lower for more similar inputs.
	FamilyDistance Family = iota
	// FamilySimilarity scores are higher for more similar inputs.
	FamilySimilarity
)

func (f Family) String() string {
	switch f {
	case FamilyDistance:
		return "distance"
	case FamilySimilarity:
		return "similarity"
	default:
		return "unknown"
	}
}

// Better reports whether score a indicates a closer match than score b.
func (f Family) Better(a, b float64) bool {
	if f == FamilyDistance {
		return a < b
	}
	return a > b
}

// Kind selects one of the six metrics.
type Kind int

const (
	SqDiff Kind = iota
	SqDiffNormed
	CCorr
	CCorrNormed
	CCoeff
	CCoeffNormed
)

// record carries the constant data attached to a Kind.
type record struct {
	name         string
	label        string
	templateMode int // OpenCV TemplateMatchModes value
	family       Family
	score        Func
	isDefault    bool
}

var records = [...]record{
	SqDiff: {
		name: "TM_SQDIFF", label: "Square difference",
		templateMode: 0, family: FamilyDistance, score: SquareDifference,
	},
	SqDiffNormed: {
		name: "TM_SQDIFF_NORMED", label: "Square difference normed",
		templateMode: 1, family: FamilyDistance, score: SquareDifferenceNormed,
		isDefault: true,
	},
	CCorr: {
		name: "TM_CCORR", label: "Cross correlation",
		templateMode: 2, family: FamilySimilarity, score: CrossCorrelation,
	},
	CCorrNormed: {
		name: "TM_CCORR_NORMED", label: "Cross correlation normed",
		templateMode: 3, family: FamilySimilarity, score: CrossCorrelationNormed,
	},
	CCoeff: {
		name: "TM_CCOEFF", label: "Correlation coefficient",
		templateMode: 4, family: FamilySimilarity, score: CorrelationCoefficient,
	},
	CCoeffNormed: {
		name: "TM_CCOEFF_NORMED", label: "Correlation coefficient normed",
		templateMode: 5, family: FamilySimilarity, score: CorrelationCoefficientNormed,
	},
}

// All returns every metric in declaration order.
func All() []Kind {
	kinds := make([]Kind, len(records))
	for i := range records {
		kinds[i] = Kind(i)
	}
	return kinds
}

// Default returns the metric used when no valid selection is given.
func Default() Kind {
	for i, r := range records {
		if r.isDefault {
			return Kind(i)
		}
	}
	return SqDiffNormed
}

// Valid reports whether k is one of the declared metrics.
func (k Kind) Valid() bool {
	return k >= 0 && int(k) < len(records)
}

// rec returns the record for k, or the default record for invalid kinds.
func (k Kind) rec() record {
	if !k.Valid() {
		return records[Default()]
	}
	return records[k]
}

// Name returns the OpenCV-style name, e.g. "TM_SQDIFF_NORMED".
func (k Kind) Name() string { return k.rec().name }

// Label returns a human readable name.
func (k Kind) Label() string { return k.rec().label }

// TemplateMode returns the matching OpenCV TemplateMatchModes constant.
func (k Kind) TemplateMode() int { return k.rec().templateMode }

// Best picks the extreme of a template match response that marks the
// closest match: the minimum for distance metrics, the maximum otherwise.
func (k Kind) Best(minVal, maxVal float64, minLoc, maxLoc image.Point) (float64, image.Point) {
	if k.Family().Better(maxVal, minVal) {
		return maxVal, maxLoc
	}
	return minVal, minLoc
}

// Family returns the score direction of the metric.
func (k Kind) Family() Family { return k.rec().family }

// IsDefault reports whether k is the default metric.
func (k Kind) IsDefault() bool { return k.Valid() && records[k].isDefault }

// Score applies the metric to a and b, which must have identical shapes.
func (k Kind) Score(a, b mat.Matrix) float64 {
	return k.rec().score(a, b)
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return records[k].name
}

// Parse resolves a metric by name or label, ignoring case.
func Parse(name string) (Kind, error) {
	key := strings.TrimSpace(name)
	for i, r := range records {
		if strings.EqualFold(key, r.name) || strings.EqualFold(key, r.label) {
			return Kind(i), nil
		}
	}
	return Default(), fmt.Errorf("unknown metric %q", name)
}

// FromName is Parse with a fallback: an empty or unknown name yields Default.
func FromName(name string) Kind {
	if strings.TrimSpace(name) == "" {
		return Default()
	}
	k, err := Parse(name)
	if err != nil {
		log.Printf("Warning: %v, using %s", err, Default())
	}
	return k
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.Name()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	*k = FromName(string(text))
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (k Kind) MarshalYAML() (interface{}, error) {
	return k.Name(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (k *Kind) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return fmt.Errorf("metric: %w", err)
	}
	*k = FromName(name)
	return nil
}
