package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gcdTasks = `{
  "tasks": [
    {"name": "gcd1", "package": "de.uni_passau.fim.se2.examples", "class": "GCD",
     "method": "gcd:(II)I", "line": 12, "variable": "a"},
    {"name": "calc", "package": "de.uni_passau.fim.se2.examples", "class": "Calculator",
     "method": "evaluate:(Ljava/lang/String;)I", "line": 7, "variable": "result",
     "class_path": "lib/extra.jar"}
  ]
}`

func writeCatalog(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func requireMalformed(t *testing.T, err error, code string) *MalformedError {
	t.Helper()
	require.Error(t, err)
	var me *MalformedError
	require.True(t, errors.As(err, &me), "expected *MalformedError, got %T: %v", err, err)
	assert.Equal(t, code, me.Code)
	return me
}

func TestLoad_JSONPreservesOrderAndFields(t *testing.T) {
	cat, err := Load(writeCatalog(t, "tasks.json", gcdTasks))
	require.NoError(t, err)

	require.Equal(t, []string{"gcd1", "calc"}, cat.Names())
	first := cat.Tasks[0]
	assert.Equal(t, "de.uni_passau.fim.se2.examples.GCD", first.QualifiedClass())
	assert.Equal(t, "gcd:(II)I", first.Method)
	assert.Equal(t, 12, first.Line)
	assert.Equal(t, "a", first.Variable)
	assert.Empty(t, first.ClassPath)
	assert.Equal(t, "lib/extra.jar", cat.Tasks[1].ClassPath)
	assert.Equal(t, "gcd1.xml", first.ArtifactName())
}

func TestLoad_YAML(t *testing.T) {
	content := `
tasks:
  - name: t1
    package: p
    class: C
    method: "m:()V"
    line: 5
    variable: x
`
	cat, err := Load(writeCatalog(t, "tasks.yaml", content))
	require.NoError(t, err)
	require.Equal(t, 1, cat.Len())
	assert.Equal(t, "p.C", cat.Tasks[0].QualifiedClass())
}

func TestLoad_EmptyTaskListIsValid(t *testing.T) {
	cat, err := Load(writeCatalog(t, "tasks.json", `{"tasks": []}`))
	require.NoError(t, err)
	assert.Equal(t, 0, cat.Len())
}

func TestLoad_MissingFileIsMalformed(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	me := requireMalformed(t, err, CodeUnreadable)
	assert.ErrorIs(t, me, os.ErrNotExist)
}

func TestParse_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    string
		msg     string
	}{
		{"syntax", `{"tasks": [`, CodeSyntax, ""},
		{"missing tasks", `{"jobs": []}`, CodeSyntax, ""},
		{"null tasks", `{"tasks": null}`, CodeMissingTasks, "missing"},
		{"empty object", `{}`, CodeMissingTasks, "missing"},
		{"trailing content", `{"tasks": []} {}`, CodeSyntax, "trailing"},
		{"line as string", `{"tasks": [{"name":"a","package":"p","class":"C","method":"m","line":"5","variable":"v"}]}`, CodeSyntax, ""},
		{"missing variable", `{"tasks": [{"name":"a","package":"p","class":"C","method":"m","line":5}]}`, CodeInvalidTask, "variable is required"},
		{"zero line", `{"tasks": [{"name":"a","package":"p","class":"C","method":"m","line":0,"variable":"v"}]}`, CodeInvalidTask, "line must be a positive integer"},
		{"path in name", `{"tasks": [{"name":"../a","package":"p","class":"C","method":"m","line":1,"variable":"v"}]}`, CodeInvalidTask, "file name"},
		{"duplicate name", `{"tasks": [
			{"name":"a","package":"p","class":"C","method":"m","line":1,"variable":"v"},
			{"name":"a","package":"p","class":"D","method":"m","line":2,"variable":"w"}]}`, CodeDuplicateName, "tasks[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.content), FormatJSON)
			me := requireMalformed(t, err, tt.code)
			if tt.msg != "" {
				assert.Contains(t, me.Error(), tt.msg)
			}
		})
	}
}

func TestParse_YAMLUnknownFieldRejected(t *testing.T) {
	_, err := Parse(strings.NewReader("tasks: []\nextra: 1\n"), FormatYAML)
	requireMalformed(t, err, CodeSyntax)
}

func TestParse_YAMLEmptyDocument(t *testing.T) {
	_, err := Parse(strings.NewReader(""), FormatYAML)
	requireMalformed(t, err, CodeSyntax)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromPath("a/tasks.YML"))
	assert.Equal(t, FormatYAML, FormatFromPath("tasks.yaml"))
	assert.Equal(t, FormatJSON, FormatFromPath("tasks.json"))
	assert.Equal(t, FormatJSON, FormatFromPath("tasks"))
}

func TestTask_String(t *testing.T) {
	task := Task{Name: "t1", Package: "p", Class: "C", Method: "m:()V", Line: 3, Variable: "x"}
	assert.Equal(t, "t1 (p.C#m:()V:3 x)", task.String())
}
