package wire

import (
	"strings"
	"unicode"
)

// SnakeKey rewrites a camelCase key into snake_case: every ASCII upper-case
// letter becomes "_" followed by its lower-case form.
func SnakeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key) + 4)
	for _, r := range key {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CamelKey rewrites a snake_case key into camelCase: every "_" followed by an
// ASCII lower-case letter collapses into the upper-case letter. Any other
// underscore is kept.
func CamelKey(key string) string {
	if !strings.Contains(key, "_") {
		return key
	}
	var b strings.Builder
	b.Grow(len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c == '_' && i+1 < len(key) && key[i+1] >= 'a' && key[i+1] <= 'z' {
			b.WriteByte(key[i+1] - 'a' + 'A')
			i++
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// ToWireFormat rewrites every mapping key in the tree from the console's
// camelCase convention to the backend's snake_case convention.
func ToWireFormat(tree interface{}) interface{} {
	return rewriteKeys(tree, SnakeKey)
}

// FromWireFormat is the inverse of ToWireFormat.
func FromWireFormat(tree interface{}) interface{} {
	return rewriteKeys(tree, CamelKey)
}

func rewriteKeys(node interface{}, key func(string) string) interface{} {
	switch v := node.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, child := range v {
			out[key(k)] = rewriteKeys(child, key)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, child := range v {
			out[i] = rewriteKeys(child, key)
		}
		return out
	case []map[string]interface{}:
		out := make([]interface{}, len(v))
		for i, child := range v {
			out[i] = rewriteKeys(child, key)
		}
		return out
	default:
		return node
	}
}
