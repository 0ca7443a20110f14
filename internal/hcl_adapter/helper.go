package hcl_adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/boardsmith/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// isExprDefined checks if an HCL expression was actually present in the source
// code. The HCL decoder populates omitted optional fields with non-nil,
// zero-width expressions, so a nil check is insufficient.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	logger := ctxlog.FromContext(ctx)

	if expr == nil {
		logger.Debug("Expression is nil, considering it undefined.", "attribute", attrName)
		return false
	}

	// A real attribute occupies bytes in the file; a placeholder for an
	// omitted one has a range whose start and end byte are the same.
	exprRange := expr.Range()
	isDefined := exprRange.End.Byte > exprRange.Start.Byte

	logger.Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", exprRange.String(),
		"is_defined", isDefined,
	)

	return isDefined
}

// exprToString evaluates a literal expression and converts it to a string,
// so that both `arduino_version = 105` and `arduino_version = "1.0.5"` work.
func exprToString(expr hcl.Expression, attrName string) (string, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return "", fmt.Errorf("invalid value for %s: %w", attrName, diags)
	}
	if val.IsNull() || !val.IsKnown() {
		return "", fmt.Errorf("%s must not be null", attrName)
	}
	str, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("%s must be a string or a number: %w", attrName, err)
	}
	return str.AsString(), nil
}

// exprToCommand accepts either a command line string, split on whitespace,
// or a list of arguments.
func exprToCommand(expr hcl.Expression, attrName string) ([]string, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid value for %s: %w", attrName, diags)
	}
	if val.IsNull() || !val.IsKnown() {
		return nil, fmt.Errorf("%s must not be null", attrName)
	}

	if val.Type() == cty.String {
		args := strings.Fields(val.AsString())
		if len(args) == 0 {
			return nil, fmt.Errorf("%s must not be empty", attrName)
		}
		return args, nil
	}

	list, err := convert.Convert(val, cty.List(cty.String))
	if err != nil {
		return nil, fmt.Errorf("%s must be a string or a list of strings: %w", attrName, err)
	}
	if list.LengthInt() == 0 {
		return nil, fmt.Errorf("%s must not be empty", attrName)
	}
	args := make([]string, 0, list.LengthInt())
	for _, v := range list.AsValueSlice() {
		if v.IsNull() {
			return nil, fmt.Errorf("%s must not contain null elements", attrName)
		}
		args = append(args, v.AsString())
	}
	return args, nil
}
