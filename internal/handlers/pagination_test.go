package handlers

import "testing"

func TestParsePaginationParamsDefaults(t *testing.T) {
	page, limit, err := parsePaginationParams("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page != 1 || limit != 10 {
		t.Fatalf("expected defaults page=1 limit=10, got page=%d limit=%d", page, limit)
	}
}

func TestParsePaginationParamsRejectsInvalid(t *testing.T) {
	for _, tt := range []struct{ page, limit string }{
		{"0", ""},
		{"-1", ""},
		{"abc", ""},
		{"", "0"},
		{"", "xyz"},
	} {
		if _, _, err := parsePaginationParams(tt.page, tt.limit); err == nil {
			t.Fatalf("expected error for page=%q limit=%q", tt.page, tt.limit)
		}
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, limit, want int64
	}{
		{0, 10, 0},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
		{5, 0, 0},
	}
	for _, tt := range tests {
		if got := totalPages(tt.total, tt.limit); got != tt.want {
			t.Fatalf("totalPages(%d, %d): expected %d, got %d", tt.total, tt.limit, tt.want, got)
		}
	}
}
