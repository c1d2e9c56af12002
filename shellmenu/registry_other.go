//go:build !windows

package shellmenu

// NewRegistry reports ErrUnsupportedPlatform outside Windows.
func NewRegistry() (Namespace, error) {
	return nil, ErrUnsupportedPlatform
}
