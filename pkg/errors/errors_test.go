package errors

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestNewFormatsMessage(t *testing.T) {
	err := New(ErrCodeAnchorNotFound, "no version() call in class %s", "Zlib")

	if err.Code != ErrCodeAnchorNotFound {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeAnchorNotFound)
	}
	if want := "ANCHOR_NOT_FOUND: no version() call in class Zlib"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if err.Unwrap() != nil {
		t.Errorf("Unwrap() = %v, want nil", err.Unwrap())
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := io.ErrUnexpectedEOF
	err := Wrap(ErrCodeSyntax, cause, "parse %s", "package.py")

	if want := "SYNTAX_ERROR: parse package.py: unexpected EOF"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

// The pipeline maps codes to statuses through arbitrary fmt wrapping.
func TestCodeSurvivesWrapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
	}{
		{"direct", New(ErrCodeNoUsableDigest, "no checksum"), ErrCodeNoUsableDigest},
		{"fmt wrapped", fmt.Errorf("resolve zlib: %w", New(ErrCodeNoUsableURL, "file url")), ErrCodeNoUsableURL},
		{"outermost wins", Wrap(ErrCodeNetwork, New(ErrCodeDefinitionNotFound, "inner"), "outer"), ErrCodeNetwork},
		{"double fmt", fmt.Errorf("a: %w", fmt.Errorf("b: %w", New(ErrCodeLineOutOfRange, "line 40 > 12"))), ErrCodeLineOutOfRange},
		{"plain", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if tt.code != "" && !Is(tt.err, tt.code) {
				t.Errorf("Is(err, %q) = false", tt.code)
			}
			if Is(tt.err, ErrCodeFormatUnrecognized) {
				t.Error("Is matched an unrelated code")
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"coded", New(ErrCodeFormatUnrecognized, "not a tar or zip container"), "not a tar or zip container"},
		{"wrapped coded", fmt.Errorf("inspect: %w", New(ErrCodeUndecodablePath, "member 3")), "member 3"},
		{"plain", errors.New("connection refused"), "connection refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
