package hcl_adapter

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/boardsmith/internal/config"
	"github.com/vk/boardsmith/internal/ctxlog"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot is the schema of a settings file. Unknown attributes and blocks
// are rejected so that typos surface instead of being ignored.
type fileRoot struct {
	ArduinoRoot    string         `hcl:"arduino_root,optional"`
	ArduinoVersion hcl.Expression `hcl:"arduino_version,optional"`
	CompileRoot    string         `hcl:"compile_root,optional"`
	ToolRoot       string         `hcl:"tool_root,optional"`
	BuildTool      hcl.Expression `hcl:"build_tool,optional"`
	Libraries      []*Library     `hcl:"library,block"`
}

// Library is a `library "Name" { depends_on = [...] }` block.
type Library struct {
	Name      string   `hcl:"name,label"`
	DependsOn []string `hcl:"depends_on,optional"`
}

// Load parses every existing file in order and merges them; later files
// override earlier ones attribute by attribute and library by library.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	model := &config.Model{}
	parser := hclparse.NewParser()

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				logger.Debug("Settings file not present, skipping.", "path", path)
				continue
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		hclFile, diags := parser.ParseHCLFile(path)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
		}

		fileModel, err := l.translate(ctxlog.WithLogger(ctx, logger.With("path", path)), &root)
		if err != nil {
			return nil, fmt.Errorf("in %s: %w", path, err)
		}
		model.Merge(fileModel)
		logger.Debug("Settings file loaded.", "path", path, "libraries", len(root.Libraries))
	}

	logger.Debug("HCL loading complete.", "libraries", len(model.Libraries))
	return model, nil
}
