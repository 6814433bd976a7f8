// Package catalog loads the ordered list of slicing tasks an evaluation run
// works through.
package catalog

import (
	"strconv"
	"strings"
)

// Task describes one slicing request: which variable to trace at which line
// of which method.
//
// Name doubles as the artifact file stem ({name}.xml), so it must be unique
// within a catalog and safe to use as a file name.
type Task struct {
	Name      string `json:"name" yaml:"name" validate:"required,filestem"`
	Package   string `json:"package" yaml:"package" validate:"required"`
	Class     string `json:"class" yaml:"class" validate:"required"`
	Method    string `json:"method" yaml:"method" validate:"required"`
	Line      int    `json:"line" yaml:"line" validate:"gt=0"`
	Variable  string `json:"variable" yaml:"variable" validate:"required"`
	ClassPath string `json:"class_path,omitempty" yaml:"class_path,omitempty"`
}

// QualifiedClass returns the fully qualified class name (package.class).
func (t Task) QualifiedClass() string {
	if t.Package == "" {
		return t.Class
	}
	return t.Package + "." + t.Class
}

// ArtifactName returns the file name of the task's trace artifact.
func (t Task) ArtifactName() string {
	return t.Name + ".xml"
}

// String is used in log lines.
func (t Task) String() string {
	var b strings.Builder
	b.WriteString(t.Name)
	b.WriteString(" (")
	b.WriteString(t.QualifiedClass())
	b.WriteByte('#')
	b.WriteString(t.Method)
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(t.Line))
	b.WriteByte(' ')
	b.WriteString(t.Variable)
	b.WriteByte(')')
	return b.String()
}

// Catalog is the ordered, validated list of tasks.
//
// Tasks keep their document order; every phase of an evaluation walks them
// in this order.
type Catalog struct {
	Tasks []Task `json:"tasks" yaml:"tasks"`
}

// Len returns the number of tasks.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Tasks)
}

// Names returns the task names in catalog order.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.Tasks))
	for i, t := range c.Tasks {
		out[i] = t.Name
	}
	return out
}
