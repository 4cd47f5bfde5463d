package errors

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// elementSymbolRegex matches a chemical element symbol (one capital letter,
// optionally followed by one lowercase letter).
var elementSymbolRegex = regexp.MustCompile(`^[A-Z][a-z]?$`)

// ValidateMaterial validates a lens material symbol such as "Be" or "Al".
// Compound formulas are not accepted.
func ValidateMaterial(symbol string) error {
	if symbol == "" {
		return New(ErrCodeInvalidMaterial, "material cannot be empty")
	}
	if !elementSymbolRegex.MatchString(symbol) {
		return New(ErrCodeInvalidMaterial, "invalid element symbol: %q", symbol)
	}
	return nil
}

// presetNameRegex matches lens preset names like "R50" or "R500".
var presetNameRegex = regexp.MustCompile(`^R[0-9]+$`)

// ValidatePresetName validates the shape of a lens preset name.
// Whether the preset exists is checked by the catalog.
func ValidatePresetName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPreset, "preset name cannot be empty")
	}
	if !presetNameRegex.MatchString(name) {
		return New(ErrCodeInvalidPreset, "invalid preset name: %q", name)
	}
	return nil
}

// ValidatePositive checks that a physical quantity is finite and > 0.
func ValidatePositive(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidInput, "%s must be finite", field)
	}
	if v <= 0 {
		return New(ErrCodeInvalidInput, "%s must be positive, got %g", field, v)
	}
	return nil
}

// ValidateNonNegative checks that a physical quantity is finite and >= 0.
func ValidateNonNegative(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidInput, "%s must be finite", field)
	}
	if v < 0 {
		return New(ErrCodeInvalidInput, "%s must not be negative, got %g", field, v)
	}
	return nil
}

// ValidatePath validates a user-supplied file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
