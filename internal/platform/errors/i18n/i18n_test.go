package i18n

import "testing"

func TestFormatTemplatesMetadata(t *testing.T) {
	got := Format("en-US", CodeIndexOutOfRange, map[string]string{"index": "14"})
	if got != "Card index 14 is outside the board." {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestFormatFallsBackToCode(t *testing.T) {
	if got := Format("en-US", "NO_SUCH_CODE", nil); got != "NO_SUCH_CODE" {
		t.Fatalf("expected the code itself, got %q", got)
	}
}

func TestLocaleMatching(t *testing.T) {
	tests := []struct {
		requested string
		want      string
	}{
		{"", "en-US"},
		{"en", "en-US"},
		{"en-GB", "en-US"},
		{"pt-BR", "pt-BR"},
		{"pt", "pt-BR"},
		{"zz-not-a-locale", "en-US"},
	}
	for _, tt := range tests {
		if got := Locale(tt.requested); got != tt.want {
			t.Fatalf("Locale(%q) = %q, want %q", tt.requested, got, tt.want)
		}
	}
}

func TestCatalogsCoverSameCodes(t *testing.T) {
	for code := range enUS {
		if _, ok := ptBR[code]; !ok {
			t.Fatalf("pt-BR catalog is missing %s", code)
		}
	}
	for code := range ptBR {
		if _, ok := enUS[code]; !ok {
			t.Fatalf("en-US catalog is missing %s", code)
		}
	}
}
