package coverage

// ExcludeFunc reports whether a (package, class) row of the coverage report
// is left out of aggregation.
type ExcludeFunc func(pkg, class string) bool

// Pair identifies one coverage report row.
type Pair struct {
	Package string `yaml:"package" json:"package"`
	Class   string `yaml:"class" json:"class"`
}

// ExclusionSet is a fixed set of excluded (package, class) pairs.
type ExclusionSet map[Pair]struct{}

// NewExclusionSet builds a set from pairs.
func NewExclusionSet(pairs ...Pair) ExclusionSet {
	s := make(ExclusionSet, len(pairs))
	for _, p := range pairs {
		s[p] = struct{}{}
	}
	return s
}

// Exclude implements ExcludeFunc.
func (s ExclusionSet) Exclude(pkg, class string) bool {
	_, ok := s[Pair{Package: pkg, Class: class}]
	return ok
}

// DefaultPackagePrefix is prepended to the default exclusion packages.
const DefaultPackagePrefix = "de.uni_passau.fim.se2."

// DefaultExclusionPairs lists the harness's own instrumentation classes and
// the bundled example programs, which must not count toward coverage of the
// analyzer under test.
func DefaultExclusionPairs() []Pair {
	rel := []Pair{
		{"line_coverage", "LineCoverageMain"},
		{"line_coverage.instrumentation", "Agent"},
		{"line_coverage", "OutputWriter"},
		{"examples", "Calculator"},
		{"examples", "CalculatorTest"},
		{"examples", "Lift"},
		{"examples", "LiftTest"},
		{"examples", "Maximum"},
		{"examples", "MaximumTest"},
	}
	pairs := make([]Pair, len(rel))
	for i, p := range rel {
		pairs[i] = Pair{Package: DefaultPackagePrefix + p.Package, Class: p.Class}
	}
	return pairs
}

// DefaultExclusions returns DefaultExclusionPairs as a set.
func DefaultExclusions() ExclusionSet {
	return NewExclusionSet(DefaultExclusionPairs()...)
}

// NoExclusions keeps every row.
func NoExclusions(string, string) bool { return false }
