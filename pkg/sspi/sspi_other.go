//go:build !windows

package sspi

// NewProvider returns ErrUnsupported outside Windows
func NewProvider() (Provider, error) {
	return nil, ErrUnsupported
}
