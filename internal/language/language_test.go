package language

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"en", "en"},
		{"EN", "en"},
		{" pt-BR ", "pt-br"},
		{"English", "en"},
		{"english", "en"},
		{"Español", "es"},
		{"Castilian Spanish", "es"},
		{"Brazilian Portuguese", "pt"},
		{"中文", "zh"},
		{"Mandarin", "zh"},
		{"Norwegian", "no"},
		{"bokmål", "no"},
		{"German (Deutsch)", "de"},
		{"", ""},
		{"12345", ""},
		{"romanian", "ro"},
		{"hello world", ""},
		{"a b", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.input); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"en", "English", "pt-BR", "Brazilian Portuguese", "中文",
		"hello world", "Norwegian", "zz", "", "castellano",
		"a b", "x yz", "romanian",
	}
	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", input, once, twice)
		}
		if once != "" && !codePattern.MatchString(once) {
			t.Errorf("Normalize(%q) = %q, not a canonical code", input, once)
		}
	}
	if Normalize("english") != Normalize("en") {
		t.Errorf("Normalize(english) = %q, want %q", Normalize("english"), Normalize("en"))
	}
}

func TestBaseCode(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"pt-BR", "pt"},
		{"pt", "pt"},
		{"zh-hant", "zh"},
		{"Spanish", "es"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := BaseCode(tc.input); got != tc.want {
			t.Errorf("BaseCode(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("pt-br"); got != "Portuguese" {
		t.Errorf("DisplayName(pt-br) = %q", got)
	}
	if got := DisplayName(""); got != "Unknown" {
		t.Errorf("DisplayName(empty) = %q", got)
	}
}

func TestCharsPerSecond(t *testing.T) {
	if zh, en := CharsPerSecond("zh"), CharsPerSecond("en"); zh >= en {
		t.Errorf("expected Chinese rate %.1f below English rate %.1f", zh, en)
	}
	if got := CharsPerSecond("xx"); got != 14.0 {
		t.Errorf("CharsPerSecond(unknown) = %.1f, want neutral 14.0", got)
	}
	for _, code := range Codes() {
		if CharsPerSecond(code) <= 0 {
			t.Errorf("catalog language %q has no speaking rate", code)
		}
	}
}
