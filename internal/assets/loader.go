package assets

import (
	"fmt"
	"strings"
)

// AssetLoader loads page stylesheets by name (without the .css extension).
// Implementations return ErrStyleNotFound for unknown names and
// ErrInvalidAssetName for names that are not plain file stems.
type AssetLoader interface {
	LoadStyle(name string) (string, error)
}

// ValidateAssetName rejects empty names and names holding path separators
// or dots.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, `/\.`) {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
