package confloader

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
	"gopkg.in/ini.v1"

	"github.com/yndnr/apprun-go/pkg/conftree"
)

// errMarshalNotSupported is returned by read-only parsers.
var errMarshalNotSupported = errors.New("confloader: marshal not supported")

// format binds file extensions to a koanf parser.
type format struct {
	exts   []string
	parser func() koanf.Parser
}

// formats is ordered by discovery preference.
var formats = []format{
	{exts: []string{".yml", ".yaml"}, parser: func() koanf.Parser { return yaml.Parser() }},
	{exts: []string{".json"}, parser: func() koanf.Parser { return json.Parser() }},
	{exts: []string{".toml"}, parser: func() koanf.Parser { return TOMLParser() }},
	{exts: []string{".hcl"}, parser: func() koanf.Parser { return HCLParser() }},
	{exts: []string{".ini", ".conf"}, parser: func() koanf.Parser { return INIParser() }},
}

// Extensions returns the supported file extensions in discovery order.
func Extensions() []string {
	var exts []string
	for _, f := range formats {
		exts = append(exts, f.exts...)
	}
	return exts
}

// ParserFor returns the parser for path's extension.
func ParserFor(path string) (koanf.Parser, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range formats {
		for _, e := range f.exts {
			if e == ext {
				return f.parser(), nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// tomlParser adapts BurntSushi/toml to koanf.Parser.
type tomlParser struct{}

// TOMLParser returns a TOML parser.
func TOMLParser() koanf.Parser {
	return tomlParser{}
}

func (tomlParser) Unmarshal(b []byte) (map[string]any, error) {
	out := make(map[string]any)
	if _, err := toml.Decode(string(b), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (tomlParser) Marshal(m map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// hclParser reads HCL attributes and blocks. Block labels nest:
// `db "main" { host = "x" }` yields db.main.host.
type hclParser struct{}

// HCLParser returns an HCL parser.
func HCLParser() koanf.Parser {
	return hclParser{}
}

func (hclParser) Unmarshal(b []byte) (map[string]any, error) {
	f, diags := hclparse.NewParser().ParseHCL(b, "config.hcl")
	if diags.HasErrors() {
		return nil, diags
	}
	body, ok := f.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("confloader: unexpected HCL body %T", f.Body)
	}
	return hclBody(body)
}

func (hclParser) Marshal(map[string]any) ([]byte, error) {
	return nil, errMarshalNotSupported
}

func hclBody(body *hclsyntax.Body) (map[string]any, error) {
	out := make(map[string]any, len(body.Attributes)+len(body.Blocks))

	for name, attr := range body.Attributes {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		native, err := ctyToNative(val)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		out[name] = native
	}

	for _, block := range body.Blocks {
		inner, err := hclBody(block.Body)
		if err != nil {
			return nil, fmt.Errorf("block %q: %w", block.Type, err)
		}

		node := out
		for _, key := range append([]string{block.Type}, block.Labels...) {
			child, ok := node[key].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[key] = child
			}
			node = child
		}
		for k, v := range inner {
			node[k] = v
		}
	}

	return out, nil
}

// ctyToNative converts a cty value into plain Go values.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return i, nil
			}
		}
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, err
		}
		return f, nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		list := make([]any, 0)
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, err
			}
			list = append(list, native)
		}
		return list, nil
	case ty.IsObjectType() || ty.IsMapType():
		m := make(map[string]any)
		for it := v.ElementIterator(); it.Next(); {
			key, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", key.AsString(), err)
			}
			m[key.AsString()] = native
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
	}
}

// iniParser adapts go-ini to koanf.Parser. Keys outside any section are
// top-level; "[section]" headers prefix the keys that follow with
// "section.". Dotted keys and section names nest.
type iniParser struct{}

// INIParser returns an INI parser.
func INIParser() koanf.Parser {
	return iniParser{}
}

func (iniParser) Unmarshal(b []byte) (map[string]any, error) {
	f, err := ini.LoadSources(ini.LoadOptions{SpaceBeforeInlineComment: true}, b)
	if err != nil {
		return nil, err
	}

	out := conftree.New()
	for _, sec := range f.Sections() {
		prefix := ""
		if sec.Name() != ini.DefaultSection {
			prefix = sec.Name() + conftree.Delim
		}
		for _, key := range sec.Keys() {
			path := prefix + key.Name()
			if _, taken := out.Lookup(path); taken || !out.SetDotted(path, key.String()) {
				return nil, fmt.Errorf("key %q conflicts with an earlier value", path)
			}
		}
	}
	return out.Native(), nil
}

func (iniParser) Marshal(map[string]any) ([]byte, error) {
	return nil, errMarshalNotSupported
}
