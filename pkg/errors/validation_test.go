package errors

import (
	"strings"
	"testing"
)

func TestValidateNodeID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "calculus", false},
		{"valid underscore", "linear_algebra", false},
		{"valid dash and digit", "set-theory-2", false},
		{"valid dot", "v1.intro", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 300), true},
		{"path traversal", "a..b", true},
		{"slash", "a/b", true},
		{"backslash", "a\\b", true},
		{"null byte", "a\x00b", true},
		{"newline", "a\nb", true},
		{"leading dash", "-a", true},
		{"space", "a b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNodeID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateNodeID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateUserID(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"6ba7b810-9dad-11d1-80b4-00c04fd430c8", false},
		{"", true},
		{"not-a-uuid", true},
		{"../../etc/passwd", true},
	}
	for _, tt := range tests {
		err := ValidateUserID(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateUserID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidateDataFile(t *testing.T) {
	tests := []struct {
		input    string
		want     string
		wantCode Code
	}{
		{"data/concepts.json", "json", ""},
		{"concepts.TOML", "toml", ""},
		{"concepts.yaml", "", ErrCodeInvalidFormat},
		{"concepts", "", ErrCodeInvalidFormat},
		{"", "", ErrCodeInvalidPath},
		{"bad\x00.json", "", ErrCodeInvalidPath},
	}
	for _, tt := range tests {
		got, err := ValidateDataFile(tt.input)
		if tt.wantCode != "" {
			if !Is(err, tt.wantCode) {
				t.Errorf("ValidateDataFile(%q) error = %v, want code %v", tt.input, err, tt.wantCode)
			}
			continue
		}
		if err != nil {
			t.Errorf("ValidateDataFile(%q) error: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ValidateDataFile(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"https://example.com/book", false},
		{"http://example.com", false},
		{"", true},
		{"ftp://example.com", true},
		{"javascript:alert(1)", true},
	}
	for _, tt := range tests {
		if err := ValidateURL(tt.input); (err != nil) != tt.wantErr {
			t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}
