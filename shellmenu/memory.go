package shellmenu

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

type memKey struct {
	path  string
	props map[string]string
}

// Memory is an in-process Namespace. Key and property names compare
// case-insensitively, as in the registry. The zero value is not usable;
// call NewMemory.
type Memory struct {
	keys map[string]*memKey
}

// NewMemory returns an empty Memory namespace.
func NewMemory() *Memory {
	return &Memory{keys: make(map[string]*memKey)}
}

func fold(s string) string {
	return strings.ToLower(s)
}

// CreateKey creates path and every missing ancestor.
func (m *Memory) CreateKey(_ context.Context, path string) error {
	if path == "" {
		return fmt.Errorf("creating key: empty path")
	}

	parts := strings.Split(path, Sep)

	for i := range parts {
		sub := JoinPath(parts[:i+1]...)
		if _, ok := m.keys[fold(sub)]; ok {
			continue
		}

		m.keys[fold(sub)] = &memKey{
			path:  sub,
			props: make(map[string]string),
		}
	}

	return nil
}

// DeleteKeyRecursive removes path and its whole subtree.
func (m *Memory) DeleteKeyRecursive(_ context.Context, path string) error {
	key := fold(path)

	if _, ok := m.keys[key]; !ok {
		return fmt.Errorf("deleting key %s: %w", path, ErrKeyNotFound)
	}

	prefix := key + Sep

	for k := range m.keys {
		if k == key || strings.HasPrefix(k, prefix) {
			delete(m.keys, k)
		}
	}

	return nil
}

// SetProperty stores value under name on an existing key.
func (m *Memory) SetProperty(
	_ context.Context,
	path string,
	name string,
	value string,
) error {
	mk, ok := m.keys[fold(path)]
	if !ok {
		return fmt.Errorf(
			"setting property %q on %s: %w", name, path, ErrKeyNotFound,
		)
	}

	mk.props[fold(name)] = value

	return nil
}

// Keys returns every key path in sorted order.
func (m *Memory) Keys() []string {
	out := make([]string, 0, len(m.keys))
	for _, mk := range m.keys {
		out = append(out, mk.path)
	}

	sort.Strings(out)

	return out
}

// Property returns the value stored under name on path.
func (m *Memory) Property(path, name string) (string, bool) {
	mk, ok := m.keys[fold(path)]
	if !ok {
		return "", false
	}

	val, ok := mk.props[fold(name)]

	return val, ok
}

// Children returns the sorted names of the direct subkeys of path.
func (m *Memory) Children(path string) []string {
	prefix := fold(path) + Sep

	var out []string

	for k, mk := range m.keys {
		rest, ok := strings.CutPrefix(k, prefix)
		if !ok || strings.Contains(rest, Sep) {
			continue
		}

		out = append(out, mk.path[strings.LastIndex(mk.path, Sep)+1:])
	}

	sort.Strings(out)

	return out
}
