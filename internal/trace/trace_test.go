package trace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gcdReport = `<?xml version="1.0" encoding="UTF-8"?>
<report>
  <line nr="5" id="a" instruction="LOAD x"/>
  <line nr="6" id="12" instruction="ISTORE 2"/>
  <line nr="7" id="&quot;end&quot;" instruction="RETURN"/>
</report>
`

func mustParse(t *testing.T, doc string) *Trace {
	t.Helper()
	tr, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	return tr
}

func TestParse_ReadsLinesInDocumentOrder(t *testing.T) {
	tr := mustParse(t, gcdReport)

	assert.Equal(t, "report", tr.Root)
	require.Len(t, tr.Lines, 3)
	assert.Equal(t, Line{Nr: "5", ID: "a", Instruction: "LOAD x"}, tr.Lines[0])
	assert.Equal(t, `7."end"`, tr.Lines[2].Key())
}

func TestParse_IgnoresNestedAndForeignElements(t *testing.T) {
	tr := mustParse(t, `<report>
  <meta><line nr="1" id="1" instruction="NESTED"/></meta>
  <line nr="2" id="1" instruction="TOP"/>
  <other nr="3" id="1" instruction="OTHER"/>
</report>`)

	require.Len(t, tr.Lines, 1)
	assert.Equal(t, "TOP", tr.Lines[0].Instruction)
}

func TestParse_MissingAttributesReadAsEmpty(t *testing.T) {
	tr := mustParse(t, `<report><line nr="4"/></report>`)
	require.Len(t, tr.Lines, 1)
	assert.Equal(t, "4.", tr.Lines[0].Key())
	assert.Equal(t, "", tr.Lines[0].Instruction)
}

func TestParse_EmptyReportHasNoLines(t *testing.T) {
	tr := mustParse(t, `<report/>`)
	assert.Empty(t, tr.Lines)
	assert.Equal(t, 0, tr.Canonical().Len())
}

func TestParse_RejectsUnusableDocuments(t *testing.T) {
	for name, doc := range map[string]string{
		"empty":     "",
		"text only": "analyzer crashed before writing output",
		"truncated": `<report><line nr="5" id="a"`,
		"unclosed":  `<report><line nr="5" id="a" instruction="x"/>`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(doc))
			require.Error(t, err)
		})
	}
}

func TestParse_DeclarationOnlyIsRejected(t *testing.T) {
	_, err := Parse(strings.NewReader(`<?xml version="1.0"?>`))
	require.Error(t, err)
}

func TestParse_RejectsContentOutsideRoot(t *testing.T) {
	for name, doc := range map[string]string{
		"second root":    gcdReport + `<report><line nr="9" id="z" instruction="JUNK"/></report>`,
		"trailing text":  `<report/>garbage`,
		"stack trace":    gcdReport + `Exception in thread "main" java.lang.NullPointerException`,
		"leading text":   `oops<report/>`,
		"trailing cdata": `<report/><![CDATA[x]]>`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrExtraContent)
		})
	}
}

func TestParse_AllowsCommentsAndWhitespaceAroundRoot(t *testing.T) {
	tr, err := Parse(strings.NewReader("<?xml version=\"1.0\"?>\n<!-- slice -->\n<report><line nr=\"1\" id=\"a\" instruction=\"NOP\"/></report>\n<!-- end -->\n\n"))
	require.NoError(t, err)
	assert.Len(t, tr.Lines, 1)
}

func TestParseFile_MissingFileIsNotExist(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "t1.xml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t1.xml")
	require.NoError(t, os.WriteFile(path, []byte(gcdReport), 0o644))

	tr, err := ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, tr.Lines, 3)
}

func TestCanonical_IndependentOfLineOrder(t *testing.T) {
	forward := mustParse(t, gcdReport)
	reversed := &Trace{Lines: make([]Line, len(forward.Lines))}
	for i, l := range forward.Lines {
		reversed.Lines[len(forward.Lines)-1-i] = l
	}

	a := forward.Canonical()
	b := reversed.Canonical()
	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))
	assert.NotEqual(t, a.Keys(), b.Keys(), "insertion order is still recorded")

	ha, err := a.Hash()
	require.NoError(t, err)
	hb, err := b.Hash()
	require.NoError(t, err)
	assert.Equal(t, ha, hb)
}

func TestCanonical_InsensitiveToSerialization(t *testing.T) {
	a := mustParse(t, `<report><line nr="5" id="a" instruction="LOAD x"/></report>`)
	b := mustParse(t, "<report>\n\n\t<line instruction=\"LOAD x\"   id=\"a\" nr=\"5\" ></line>\n</report>")
	assert.True(t, a.Canonical().Equal(b.Canonical()))
}

func TestCanonical_DifferentInstructionIsNotEqual(t *testing.T) {
	a := mustParse(t, `<report><line nr="5" id="a" instruction="LOAD x"/></report>`).Canonical()
	b := mustParse(t, `<report><line nr="5" id="a" instruction="LOAD y"/></report>`).Canonical()
	assert.False(t, a.Equal(b))
}

func TestCanonical_DifferentKeySetIsNotEqual(t *testing.T) {
	a := mustParse(t, `<report><line nr="5" id="a" instruction="X"/></report>`).Canonical()
	b := mustParse(t, `<report><line nr="5" id="b" instruction="X"/></report>`).Canonical()
	c := mustParse(t, `<report><line nr="5" id="a" instruction="X"/><line nr="6" id="a" instruction="X"/></report>`).Canonical()
	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, c.Equal(a))
}

func TestCanonical_RepeatedKeyKeepsPositionTakesLastValue(t *testing.T) {
	c := mustParse(t, `<report>
  <line nr="1" id="1" instruction="first"/>
  <line nr="2" id="1" instruction="other"/>
  <line nr="1" id="1" instruction="second"/>
</report>`).Canonical()

	assert.Equal(t, []string{"1.1", "2.1"}, c.Keys())
	v, ok := c.Get("1.1")
	require.True(t, ok)
	assert.Equal(t, "second", v)
}

func TestCanonical_ZeroValueUsable(t *testing.T) {
	var c Canonical
	c.Set("1.1", "x")
	assert.Equal(t, 1, c.Len())
	assert.True(t, NewCanonical().Equal(&Canonical{}))
}

func TestCanonicalJSON_SortedKeys(t *testing.T) {
	c := NewCanonical()
	c.Set("7.b", "B")
	c.Set("5.a", "A")

	b, err := c.CanonicalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"5.a":"A","7.b":"B"}`, string(b))
	assert.Equal(t, []string{"5.a", "7.b"}, c.SortedKeys())
}

func TestDiff(t *testing.T) {
	expected := NewCanonical()
	expected.Set("1.a", "LOAD x")
	expected.Set("2.a", "STORE y")
	expected.Set("3.a", "RETURN")

	actual := NewCanonical()
	actual.Set("1.a", "LOAD x")
	actual.Set("2.a", "STORE z")
	actual.Set("4.a", "NOP")

	changes := Diff(expected, actual)
	require.Len(t, changes, 3)
	assert.Equal(t, Change{Kind: ChangeModified, Key: "2.a", Expected: "STORE y", Actual: "STORE z"}, changes[0])
	assert.Equal(t, Change{Kind: ChangeMissing, Key: "3.a", Expected: "RETURN"}, changes[1])
	assert.Equal(t, Change{Kind: ChangeUnexpected, Key: "4.a", Actual: "NOP"}, changes[2])
	assert.Contains(t, changes[0].String(), `expected "STORE y", got "STORE z"`)

	assert.Empty(t, Diff(expected, expected))
}

func TestUnifiedDiff(t *testing.T) {
	expected := NewCanonical()
	expected.Set("5.a", "LOAD x")
	expected.Set("6.a", "RETURN")
	actual := NewCanonical()
	actual.Set("5.a", "LOAD y")
	actual.Set("6.a", "RETURN")

	out, err := UnifiedDiff("t1_expected.xml", "t1_actual.xml", expected, actual)
	require.NoError(t, err)
	assert.Contains(t, out, "--- t1_expected.xml")
	assert.Contains(t, out, "+++ t1_actual.xml")
	assert.Contains(t, out, "\n-5.a LOAD x\n+5.a LOAD y\n 6.a RETURN\n")

	same, err := UnifiedDiff("a", "b", expected, expected)
	require.NoError(t, err)
	assert.Empty(t, same)
}

func TestFileDiff_EmptyActual(t *testing.T) {
	expected := NewCanonical()
	expected.Set("5.a", "LOAD x")

	fd := FileDiff("e", "a", expected, NewCanonical())
	require.Len(t, fd.Hunks, 1)
	assert.EqualValues(t, 1, fd.Hunks[0].OrigStartLine)
	assert.EqualValues(t, 0, fd.Hunks[0].NewStartLine)
	assert.EqualValues(t, 0, fd.Hunks[0].NewLines)
}

func TestComputeTraceHash_EmptyInput(t *testing.T) {
	assert.Equal(t, "", ComputeTraceHash(nil))
	assert.Len(t, ComputeTraceHash([]byte("{}")), 64)
}
