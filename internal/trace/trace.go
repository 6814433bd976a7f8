// Package trace models the slice trace artifacts written by the analyzer and
// reduces them to a canonical form that can be compared structurally.
package trace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/antchfx/xmlquery"
)

// ErrExtraContent is returned for documents with a second root element or
// non-whitespace text outside the root element.
var ErrExtraContent = errors.New("trace: content outside the root element")

// Line is one slice step: a bytecode instruction contributing to the traced
// variable, attributed to a source line.
//
// Nr and ID are kept as strings: the analyzer emits numeric IDs for regular
// instructions and quoted symbolic IDs for synthetic nodes.
type Line struct {
	Nr          string
	ID          string
	Instruction string
}

// Key returns the composite key "{nr}.{id}" used by the canonical form.
func (l Line) Key() string {
	return l.Nr + "." + l.ID
}

// Trace is a parsed artifact. Lines are in document order.
type Trace struct {
	Root  string
	Lines []Line
}

// Parse reads a trace document.
//
// The document must be well-formed with exactly one root element; its
// direct "line" children become Lines. Other elements are ignored. A missing
// attribute reads as "".
func Parse(r io.Reader) (*Trace, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("trace: parse: %w", err)
	}

	root, err := rootElement(doc)
	if err != nil {
		return nil, err
	}

	tr := &Trace{Root: root.Data}
	for n := root.FirstChild; n != nil; n = n.NextSibling {
		if n.Type != xmlquery.ElementNode || n.Data != "line" {
			continue
		}
		tr.Lines = append(tr.Lines, Line{
			Nr:          n.SelectAttr("nr"),
			ID:          n.SelectAttr("id"),
			Instruction: n.SelectAttr("instruction"),
		})
	}
	return tr, nil
}

// ParseFile reads the trace document at path. A missing file yields an
// error matching os.ErrNotExist.
func ParseFile(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("trace: open %q: %w", path, err)
	}
	defer f.Close()

	tr, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}
	return tr, nil
}

// rootElement returns the single root element of doc. Comments, processing
// instructions and whitespace may surround it; anything else may not.
//
// The parser attaches top-level text that precedes the first element as a
// sibling of doc rather than a child, so both are inspected.
func rootElement(doc *xmlquery.Node) (*xmlquery.Node, error) {
	var top []*xmlquery.Node
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		top = append(top, n)
	}
	for n := doc.NextSibling; n != nil; n = n.NextSibling {
		top = append(top, n)
	}

	var root *xmlquery.Node
	for _, n := range top {
		switch n.Type {
		case xmlquery.ElementNode:
			if root != nil {
				return nil, fmt.Errorf("%w: second root element <%s>", ErrExtraContent, n.Data)
			}
			root = n
		case xmlquery.TextNode, xmlquery.CharDataNode:
			if text := strings.TrimSpace(n.Data); text != "" {
				return nil, fmt.Errorf("%w: text %q", ErrExtraContent, truncate(text, 40))
			}
		}
	}
	if root == nil {
		return nil, errors.New("trace: document has no root element")
	}
	return root, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Canonical returns the canonical mapping of the trace.
func (t *Trace) Canonical() *Canonical {
	c := NewCanonical()
	if t == nil {
		return c
	}
	for _, l := range t.Lines {
		c.Set(l.Key(), l.Instruction)
	}
	return c
}
