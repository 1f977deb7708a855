package identifier

import "testing"

func TestSanitize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"veggieLike", "VeggieLike"},
		{"login-name", "LoginName"},
		{"test_enum", "TestEnum"},
		{"space case", "SpaceCase"},
		{"2fast", "N2fast"},
		{"", "Value"},
		{"HTTPServer", "HTTPServer"},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReserve(t *testing.T) {
	taken := map[string]bool{}
	if got := Reserve("Foo", taken); got != "Foo" {
		t.Fatalf("got %q", got)
	}
	if got := Reserve("Foo", taken); got != "Foo2" {
		t.Fatalf("got %q", got)
	}
	if got := Reserve("Foo", taken); got != "Foo3" {
		t.Fatalf("got %q", got)
	}
}
