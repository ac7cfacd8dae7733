package handlers

import (
	"strings"
	"testing"
)

func TestValidateImageFile(t *testing.T) {
	tests := []struct {
		filename string
		size     int64
		wantExt  string
		wantErr  bool
	}{
		{"avatar.jpg", 1024, ".jpg", false},
		{"avatar.JPEG", 1024, ".jpeg", false},
		{"avatar.png", 1024, ".png", false},
		{"avatar.webp", 1024, ".webp", false},
		{"avatar.gif", 1024, "", true},
		{"avatar", 1024, "", true},
		{"avatar.jpg", 6 << 20, "", true},
	}

	for _, tt := range tests {
		ext, err := validateImageFile(tt.filename, tt.size)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("validateImageFile(%q, %d): expected error", tt.filename, tt.size)
			}
			continue
		}
		if err != nil {
			t.Fatalf("validateImageFile(%q, %d): unexpected error: %v", tt.filename, tt.size, err)
		}
		if ext != tt.wantExt {
			t.Fatalf("validateImageFile(%q, %d): expected ext %s, got %s", tt.filename, tt.size, tt.wantExt, ext)
		}
	}
}

func TestSafeDeleteUploadRefusesOutsidePaths(t *testing.T) {
	for _, relPath := range []string{
		"../etc/passwd",
		"uploads/../../etc/passwd",
		"etc/passwd",
		"/etc/passwd",
	} {
		err := safeDeleteUpload(relPath)
		if err == nil {
			t.Fatalf("expected refusal for %q", relPath)
		}
		if !strings.Contains(err.Error(), "refusing") {
			t.Fatalf("expected refusal error for %q, got: %v", relPath, err)
		}
	}
}

func TestSafeDeleteUploadIgnoresEmptyPath(t *testing.T) {
	if err := safeDeleteUpload(""); err != nil {
		t.Fatalf("expected nil for empty path, got: %v", err)
	}
}
