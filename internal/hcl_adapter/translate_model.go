// This file translates the decoded HCL schema into the format-agnostic
// config.Model.

package hcl_adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/boardsmith/internal/config"
	"github.com/vk/boardsmith/internal/ctxlog"
)

func (l *Loader) translate(ctx context.Context, root *fileRoot) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	m := &config.Model{
		ArduinoRoot: root.ArduinoRoot,
		CompileRoot: root.CompileRoot,
		ToolRoot:    root.ToolRoot,
	}

	if isExprDefined(ctx, root.ArduinoVersion, "arduino_version") {
		raw, err := exprToString(root.ArduinoVersion, "arduino_version")
		if err != nil {
			return nil, err
		}
		version, err := config.ParseVersion(raw)
		if err != nil {
			return nil, fmt.Errorf("arduino_version: %w", err)
		}
		m.ArduinoVersion = version
	}

	if isExprDefined(ctx, root.BuildTool, "build_tool") {
		tool, err := exprToCommand(root.BuildTool, "build_tool")
		if err != nil {
			return nil, err
		}
		m.BuildTool = tool
	}

	if len(root.Libraries) > 0 {
		m.Libraries = make(map[string][]string, len(root.Libraries))
	}
	for _, lib := range root.Libraries {
		name := strings.TrimSpace(lib.Name)
		if name == "" {
			return nil, fmt.Errorf("library block with an empty name")
		}
		if _, dup := m.Libraries[name]; dup {
			return nil, fmt.Errorf("library %q is declared more than once", name)
		}
		m.Libraries[name] = lib.DependsOn
		logger.Debug("Library declaration read.", "library", name, "depends_on", lib.DependsOn)
	}

	return m, nil
}
