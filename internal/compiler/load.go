package compiler

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/jsonlogic/internal/ir"
)

// CompileFile compiles a single manifest file, choosing the front end by
// extension (.cue, .yaml or .yml). The result is not validated.
func CompileFile(path string) ([]ir.QuerySpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	switch filepath.Ext(path) {
	case ".cue":
		v := cuecontext.New().CompileBytes(data, cue.Filename(path))
		return CompileManifest(v)
	case ".yaml", ".yml":
		specs, err := CompileYAML(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return specs, nil
	default:
		return nil, fmt.Errorf("%s: unsupported manifest extension %q", path, filepath.Ext(path))
	}
}
