package errors

import (
	"math"
	"testing"
)

func TestValidateMaterial(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"beryllium", "Be", false},
		{"aluminium", "Al", false},
		{"single letter", "C", false},

		{"empty", "", true},
		{"lowercase", "be", true},
		{"compound", "SiO2", true},
		{"too long", "Bex", true},
		{"whitespace", " Be", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMaterial(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMaterial(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidMaterial) {
				t.Errorf("ValidateMaterial(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidMaterial)
			}
		})
	}
}

func TestValidatePresetName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"R50", "R50", false},
		{"R500", "R500", false},

		{"empty", "", true},
		{"lowercase", "r50", true},
		{"no digits", "R", true},
		{"suffix", "R50x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePresetName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePresetName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePositive(t *testing.T) {
	tests := []struct {
		name    string
		input   float64
		wantErr bool
	}{
		{"positive", 10300, false},
		{"tiny", 1e-12, false},

		{"zero", 0, true},
		{"negative", -1, true},
		{"nan", math.NaN(), true},
		{"inf", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePositive("energy", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePositive(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateNonNegative(t *testing.T) {
	if err := ValidateNonNegative("sx", 0); err != nil {
		t.Errorf("ValidateNonNegative(0) error = %v, want nil", err)
	}
	if err := ValidateNonNegative("sx", -1e-6); err == nil {
		t.Error("ValidateNonNegative(-1e-6) error = nil, want error")
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "beamlines/id10.toml", false},
		{"absolute", "/etc/tfcalc/beamline.toml", false},

		{"empty", "", true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://example.com/path", false},
		{"http", "http://localhost:8080", false},

		{"empty", "", true},
		{"ftp", "ftp://example.com", true},
		{"file", "file:///etc/passwd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
