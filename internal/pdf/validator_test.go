package pdf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidator_ValidateFile(t *testing.T) {
	validator := NewValidator(1024 * 1024) // 1MB limit

	tests := []struct {
		name        string
		req         CableValidateFileRequest
		expectValid bool
	}{
		{
			name:        "empty path",
			req:         CableValidateFileRequest{Path: ""},
			expectValid: false,
		},
		{
			name:        "non-existent file",
			req:         CableValidateFileRequest{Path: "/non/existent/file.pdf"},
			expectValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := validator.ValidateFile(tt.req)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if result == nil {
				t.Fatalf("result should not be nil")
			}

			if result.Valid != tt.expectValid {
				t.Errorf("expected Valid=%v but got %v", tt.expectValid, result.Valid)
			}

			if result.Path != tt.req.Path {
				t.Errorf("expected Path=%s but got %s", tt.req.Path, result.Path)
			}

			if !tt.expectValid && result.Message == "" {
				t.Errorf("expected validation message for invalid file")
			}
		})
	}
}

func TestValidator_ValidateFileInfo(t *testing.T) {
	validator := NewValidator(1024) // 1KB limit
	tempDir := t.TempDir()

	write := func(name string, size int) string {
		path := filepath.Join(tempDir, name)
		if err := os.WriteFile(path, []byte(strings.Repeat("x", size)), 0o600); err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
		return path
	}

	tests := []struct {
		name      string
		path      string
		wantError string
	}{
		{"valid pdf", write("valid.pdf", 100), ""},
		{"upper case extension", write("PLAN.PDF", 100), ""},
		{"too large", write("large.pdf", 2048), "file too large"},
		{"empty", write("empty.pdf", 0), "file is empty"},
		{"not a pdf", write("document.txt", 100), "file is not a PDF"},
		{"directory", tempDir, "path is a directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := os.Stat(tt.path)
			if err != nil {
				t.Fatalf("stat failed: %v", err)
			}

			err = validator.ValidateFileInfo(tt.path, info)
			if tt.wantError == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				if !validator.IsValidPDF(tt.path) {
					t.Errorf("IsValidPDF(%s) = false, want true", tt.path)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantError) {
				t.Errorf("expected error containing %q, got %v", tt.wantError, err)
			}
		})
	}
}
