package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Format selects the document decoder.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the decoder from the file extension; unknown
// extensions are treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// document mirrors the on-disk layout. Tasks is a pointer so that a missing
// top-level list can be told apart from an empty one.
type document struct {
	Tasks *[]Task `json:"tasks" yaml:"tasks"`
}

// Load reads and validates the catalog at path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, malformed(path, CodeUnreadable, err, "%v", err)
	}
	return parse(path, bytes.NewReader(data), FormatFromPath(path))
}

// Parse decodes and validates a catalog from r.
func Parse(r io.Reader, format Format) (*Catalog, error) {
	return parse("<input>", r, format)
}

func parse(source string, r io.Reader, format Format) (*Catalog, error) {
	var doc document
	var err error
	switch format {
	case FormatYAML:
		err = decodeYAML(r, &doc)
	case FormatJSON, "":
		err = decodeJSONStrict(r, &doc)
	default:
		return nil, malformed(source, CodeSyntax, nil, "unsupported format %q", format)
	}
	if err != nil {
		return nil, malformed(source, CodeSyntax, err, "%v", err)
	}
	if doc.Tasks == nil {
		return nil, malformed(source, CodeMissingTasks, nil, "top-level \"tasks\" list is missing")
	}

	cat := &Catalog{Tasks: *doc.Tasks}
	if err := validate(source, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

func decodeJSONStrict(r io.Reader, dst any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("invalid JSON: trailing content")
	}
	return nil
}

func decodeYAML(r io.Reader, dst any) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty document")
		}
		return err
	}
	return nil
}

var taskValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("filestem", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "." || s == ".." {
			return false
		}
		return !strings.ContainsAny(s, `/\`) && strings.TrimSpace(s) == s
	})
	return v
}

// validate checks every task and enforces unique names. A duplicate name
// would make a later task silently replace an earlier task's verdict and
// artifacts, so it is rejected here instead.
func validate(source string, cat *Catalog) error {
	seen := make(map[string]int, len(cat.Tasks))
	for i, t := range cat.Tasks {
		if err := taskValidator.Struct(t); err != nil {
			return malformed(source, CodeInvalidTask, err, "tasks[%d]: %s", i, describeValidation(err))
		}
		if prev, ok := seen[t.Name]; ok {
			return malformed(source, CodeDuplicateName, nil, "tasks[%d]: name %q already used by tasks[%d]", i, t.Name, prev)
		}
		seen[t.Name] = i
	}
	return nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "gt":
			msgs = append(msgs, fmt.Sprintf("%s must be a positive integer", field))
		case "filestem":
			msgs = append(msgs, fmt.Sprintf("%s %q is not usable as a file name", field, fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %q", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
