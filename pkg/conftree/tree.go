package conftree

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/knadh/koanf/maps"
)

// Delim separates the segments of a dotted path.
const Delim = "."

// Tree is a nested option tree. Values are either string or Tree.
type Tree map[string]any

// New returns an empty tree.
func New() Tree {
	return Tree{}
}

// Set assigns value at path, creating intermediate trees as needed.
// When an intermediate segment already holds a scalar the assignment is
// dropped and Set reports false.
func (t Tree) Set(path []string, value string) bool {
	if len(path) == 0 {
		return false
	}
	node := t
	for _, seg := range path[:len(path)-1] {
		switch next := node[seg].(type) {
		case nil:
			child := Tree{}
			node[seg] = child
			node = child
		case Tree:
			node = next
		default:
			return false
		}
	}
	node[path[len(path)-1]] = value
	return true
}

// SetDotted is Set with a dotted key.
func (t Tree) SetDotted(key, value string) bool {
	return t.Set(strings.Split(key, Delim), value)
}

// Lookup returns the node at a dotted path.
func (t Tree) Lookup(key string) (any, bool) {
	var node any = t
	for _, seg := range strings.Split(key, Delim) {
		sub, ok := node.(Tree)
		if !ok {
			return nil, false
		}
		node, ok = sub[seg]
		if !ok {
			return nil, false
		}
	}
	return node, true
}

// String returns the scalar at a dotted path, or "" when the path is
// missing or names a subtree.
func (t Tree) String(key string) string {
	v, _ := t.Lookup(key)
	s, _ := v.(string)
	return s
}

// Sub returns the subtree at a dotted path, or nil.
func (t Tree) Sub(key string) Tree {
	v, _ := t.Lookup(key)
	sub, _ := v.(Tree)
	return sub
}

// Has reports whether the top-level key is present.
func (t Tree) Has(key string) bool {
	_, ok := t[key]
	return ok
}

// Keys returns the sorted top-level keys.
func (t Tree) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of t.
func (t Tree) Clone() Tree {
	if t == nil {
		return Tree{}
	}
	return Tree(maps.Copy(t))
}

// FillAbsent copies top-level keys of src that are missing from t.
func (t Tree) FillAbsent(src Tree) {
	for k, v := range src {
		if _, ok := t[k]; ok {
			continue
		}
		t[k] = cloneValue(v)
	}
}

// Override copies every top-level key of src into t, replacing existing values.
func (t Tree) Override(src Tree) {
	for k, v := range src {
		t[k] = cloneValue(v)
	}
}

// Merge recursively copies src into t. Scalars in src replace whatever t
// holds; subtrees are merged so siblings already in t survive.
func (t Tree) Merge(src Tree) {
	for k, v := range src {
		srcSub, ok := v.(Tree)
		if !ok {
			t[k] = v
			continue
		}
		if dstSub, ok := t[k].(Tree); ok {
			dstSub.Merge(srcSub)
			continue
		}
		t[k] = srcSub.Clone()
	}
}

// Flatten returns every scalar keyed by its dotted path.
func (t Tree) Flatten() map[string]string {
	out := make(map[string]string)
	t.flatten("", out)
	return out
}

func (t Tree) flatten(prefix string, out map[string]string) {
	for k, v := range t {
		key := k
		if prefix != "" {
			key = prefix + Delim + k
		}
		switch val := v.(type) {
		case Tree:
			val.flatten(key, out)
		case string:
			out[key] = val
		}
	}
}

// Native converts t into plain nested map[string]any values, the shape
// encoders and koanf expect.
func (t Tree) Native() map[string]any {
	out := make(map[string]any, len(t))
	for k, v := range t {
		if sub, ok := v.(Tree); ok {
			out[k] = sub.Native()
			continue
		}
		out[k] = v
	}
	return out
}

// FromMap builds a tree from decoded configuration data. Nested maps become
// subtrees, lists become subtrees keyed by index and every other value is
// rendered as a string.
func FromMap(m map[string]any) Tree {
	t := make(Tree, len(m))
	for k, v := range m {
		t[k] = fromValue(v)
	}
	return t
}

func fromValue(v any) any {
	switch val := v.(type) {
	case Tree:
		return val.Clone()
	case map[string]any:
		return FromMap(val)
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[fmt.Sprint(k)] = item
		}
		return FromMap(m)
	case []any:
		sub := make(Tree, len(val))
		for i, item := range val {
			sub[strconv.Itoa(i)] = fromValue(item)
		}
		return sub
	case []map[string]any:
		sub := make(Tree, len(val))
		for i, item := range val {
			sub[strconv.Itoa(i)] = FromMap(item)
		}
		return sub
	case []string:
		sub := make(Tree, len(val))
		for i, item := range val {
			sub[strconv.Itoa(i)] = item
		}
		return sub
	case string:
		return val
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}

func cloneValue(v any) any {
	if sub, ok := v.(Tree); ok {
		return sub.Clone()
	}
	return v
}
