//go:build windows

package shellmenu

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

// nativeRegistry is a Namespace backed by the HKEY_CURRENT_USER hive.
type nativeRegistry struct {
	root registry.Key
	base string
}

// NewRegistry returns the native registry namespace rooted at RootPath
// under HKEY_CURRENT_USER.
func NewRegistry() (Namespace, error) {
	return &nativeRegistry{root: registry.CURRENT_USER, base: RootPath}, nil
}

func (nr *nativeRegistry) full(path string) string {
	return nr.base + Sep + path
}

func (nr *nativeRegistry) CreateKey(_ context.Context, path string) error {
	const errCtx = "creating key"

	k, _, err := registry.CreateKey(
		nr.root, nr.full(path), registry.CREATE_SUB_KEY|registry.SET_VALUE,
	)
	if err != nil {
		return fmt.Errorf("%s %s: %w", errCtx, path, err)
	}

	if err := k.Close(); err != nil {
		return fmt.Errorf("%s %s: %w", errCtx, path, err)
	}

	return nil
}

func (nr *nativeRegistry) DeleteKeyRecursive(_ context.Context, path string) error {
	const errCtx = "deleting key"

	err := deleteTree(nr.root, nr.full(path))
	if errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("%s %s: %w", errCtx, path, ErrKeyNotFound)
	}

	if err != nil {
		return fmt.Errorf("%s %s: %w", errCtx, path, err)
	}

	return nil
}

// deleteTree removes the subkeys of path depth-first, then path itself;
// RegDeleteKey refuses keys that still have children.
func deleteTree(root registry.Key, path string) error {
	k, err := registry.OpenKey(
		root, path, registry.ENUMERATE_SUB_KEYS|registry.QUERY_VALUE,
	)
	if err != nil {
		return err
	}

	names, err := k.ReadSubKeyNames(-1)
	_ = k.Close() //nolint:errcheck // read-only handle

	if err != nil {
		return err
	}

	for _, name := range names {
		if err := deleteTree(root, path+Sep+name); err != nil {
			return err
		}
	}

	return registry.DeleteKey(root, path)
}

func (nr *nativeRegistry) SetProperty(
	_ context.Context,
	path string,
	name string,
	value string,
) error {
	const errCtx = "setting property"

	k, err := registry.OpenKey(nr.root, nr.full(path), registry.SET_VALUE)
	if errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf(
			"%s %q on %s: %w", errCtx, name, path, ErrKeyNotFound,
		)
	}

	if err != nil {
		return fmt.Errorf("%s %q on %s: %w", errCtx, name, path, err)
	}

	defer func() {
		_ = k.Close() //nolint:errcheck // value already written or failed
	}()

	if err := k.SetStringValue(name, value); err != nil {
		return fmt.Errorf("%s %q on %s: %w", errCtx, name, path, err)
	}

	return nil
}
