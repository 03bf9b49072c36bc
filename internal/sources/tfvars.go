package sources

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// TFVarsFileName is the conventional Terraform variables file.
const TFVarsFileName = "terraform.tfvars"

// TFVars holds the scalar and list assignments of a tfvars file. Scalars are
// strings; lists are []string.
type TFVars struct {
	Values map[string]any
	// Path is empty when no file was read.
	Path string
}

// LoadTFVars parses the file at path. An empty or missing path yields an
// empty result. Map and object assignments are ignored.
func LoadTFVars(path string) (TFVars, error) {
	out := TFVars{Values: map[string]any{}}
	if path == "" {
		return out, nil
	}

	src, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return TFVars{}, fmt.Errorf("read %s: %w", path, err)
	}

	values, err := ParseTFVars(src, path)
	if err != nil {
		return TFVars{}, err
	}
	out.Values = values
	out.Path = path
	return out, nil
}

// ParseTFVars decodes HCL attribute assignments from src.
func ParseTFVars(src []byte, filename string) (map[string]any, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse %s: %w", filename, diags)
	}
	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse %s: %w", filename, diags)
	}

	values := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("evaluate %s in %s: %w", name, filename, diags)
		}
		v, ok, err := ctyToRaw(val)
		if err != nil {
			return nil, fmt.Errorf("convert %s in %s: %w", name, filename, err)
		}
		if ok {
			values[name] = v
		}
	}
	return values, nil
}

func ctyToRaw(val cty.Value) (any, bool, error) {
	if val.IsNull() || !val.IsKnown() {
		return nil, false, nil
	}
	ty := val.Type()
	switch {
	case ty.IsPrimitiveType():
		s, err := convert.Convert(val, cty.String)
		if err != nil {
			return nil, false, err
		}
		return s.AsString(), true, nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		list := make([]string, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			if elem.IsNull() || !elem.Type().IsPrimitiveType() {
				continue
			}
			s, err := convert.Convert(elem, cty.String)
			if err != nil {
				return nil, false, err
			}
			list = append(list, s.AsString())
		}
		return list, true, nil
	}
	return nil, false, nil
}
