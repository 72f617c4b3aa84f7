package validation

import "testing"

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"user@example.com", true},
		{"a.b+tag@mail.co", true},
		{"", false},
		{"not-an-email", false},
		{"user@", false},
		{"User Name <user@example.com>", false},
	}

	for _, tt := range tests {
		if got := IsValidEmail(tt.email); got != tt.want {
			t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}

func TestIsValidPassword(t *testing.T) {
	if IsValidPassword("12345") {
		t.Errorf("5-char password must be rejected")
	}
	if !IsValidPassword("123456") {
		t.Errorf("6-char password must be accepted")
	}
}

func TestIsValidDimensions(t *testing.T) {
	tests := []struct {
		width, length float64
		want          bool
	}{
		{2, 3, true},
		{0, 3, false},
		{2, 0, false},
		{-1, 3, false},
	}

	for _, tt := range tests {
		if got := IsValidDimensions(tt.width, tt.length); got != tt.want {
			t.Errorf("IsValidDimensions(%v, %v) = %v, want %v", tt.width, tt.length, got, tt.want)
		}
	}
}

func TestIsValidArea(t *testing.T) {
	if IsValidArea(0) || IsValidArea(-2.5) {
		t.Errorf("non-positive area must be rejected")
	}
	if !IsValidArea(0.5) {
		t.Errorf("positive area must be accepted")
	}
}
