package cli

import (
	"os"
	"path/filepath"
	"strings"
)

// resolveWorkDir returns the absolute directory every relative path is
// resolved against. An explicit --workdir must be absolute; without one the
// process directory is read once, here, and never consulted again.
func resolveWorkDir(flagValue string) (string, error) {
	if strings.TrimSpace(flagValue) == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", setupError(err, "cannot determine working directory")
		}
		return filepath.Clean(wd), nil
	}
	clean := filepath.Clean(flagValue)
	if !filepath.IsAbs(clean) {
		return "", invalidInvocationf("--workdir must be an absolute path (got %q)", flagValue)
	}
	return clean, nil
}

func resolveUnderWorkDir(workDir, p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", invalidInvocationf("path must not be empty")
	}
	clean := filepath.Clean(p)
	if filepath.IsAbs(clean) {
		return clean, nil
	}
	// workDir is absolute, so Join does not consult the process directory.
	return filepath.Clean(filepath.Join(workDir, clean)), nil
}

// resolveProgram resolves a program path like a file path unless it is a
// bare name, which is left for PATH lookup.
func resolveProgram(workDir, p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", invalidInvocationf("program path must not be empty")
	}
	if !strings.ContainsRune(p, filepath.Separator) {
		return p, nil
	}
	return resolveUnderWorkDir(workDir, p)
}
