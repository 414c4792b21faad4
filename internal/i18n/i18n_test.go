package i18n

import "testing"

func TestMatch(t *testing.T) {
	tests := []struct {
		tag  string
		want Language
	}{
		{"en-US", EN},
		{"fr-CA", FR},
		{"de_DE.UTF-8", DE},
		{"fr_FR@euro", FR},
		{"ja", EN},
		{"", EN},
		{"not a tag!!", EN},
	}
	for _, tt := range tests {
		if got := Match(tt.tag); got != tt.want {
			t.Errorf("Match(%q) = %q, want %q", tt.tag, got, tt.want)
		}
	}
}

func TestTFallback(t *testing.T) {
	defer SetLanguage(GetLanguage())

	SetLanguage(FR)
	if got := T("key_space"); got != "Espace" {
		t.Errorf("T(key_space) in FR = %q", got)
	}
	SetLanguage(Language("xx"))
	if got := T("key_space"); got != "Space" {
		t.Errorf("T(key_space) in unknown language = %q, want English", got)
	}
	if got := T("missing_key"); got != "missing_key" {
		t.Errorf("T(missing_key) = %q", got)
	}
}

func TestEveryLanguageHasEnglishKeys(t *testing.T) {
	for _, lang := range AvailableLanguages() {
		for key := range translations[EN] {
			if _, ok := translations[lang][key]; !ok {
				t.Errorf("%s is missing %q", lang, key)
			}
		}
	}
}
