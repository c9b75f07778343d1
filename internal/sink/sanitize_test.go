package sink

import (
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"

	"pgregory.net/rapid"
)

func TestSanitize_StripsMarkup(t *testing.T) {
	got := Sanitize("<b>Appeared</b> before <i>Judge Smith</i>", 0)
	if got != "Appeared before Judge Smith" {
		t.Errorf("got %q", got)
	}
}

func TestSanitize_DropsScriptContent(t *testing.T) {
	got := Sanitize("<script>alert(1)</script>Motion hearing", 0)
	if strings.Contains(got, "alert") {
		t.Errorf("script content leaked: %q", got)
	}
	if !strings.Contains(got, "Motion hearing") {
		t.Errorf("visible text lost: %q", got)
	}
}

func TestSanitize_PlainTextUnchanged(t *testing.T) {
	got := Sanitize("Appeared before Judge Smith on a Motion", 0)
	if got != "Appeared before Judge Smith on a Motion" {
		t.Errorf("got %q", got)
	}
}

func TestSanitize_RemovesControlCharacters(t *testing.T) {
	got := Sanitize("Motion\x00 hearing\x1b[31m", 0)
	for _, r := range got {
		if unicode.IsControl(r) {
			t.Fatalf("control rune survived: %q", got)
		}
	}
}

func TestSanitize_CollapsesWhitespace(t *testing.T) {
	got := Sanitize("  Motion \t\n  hearing  ", 0)
	if got != "Motion hearing" {
		t.Errorf("got %q", got)
	}
}

func TestSanitize_ClampsLength(t *testing.T) {
	got := Sanitize(strings.Repeat("a", 100), 10)
	if len(got) > 10 {
		t.Errorf("length %d exceeds ceiling", len(got))
	}
}

func TestSanitize_ClampKeepsValidUTF8(t *testing.T) {
	got := Sanitize(strings.Repeat("é", 50), 9)
	if !utf8.ValidString(got) {
		t.Errorf("clamp produced invalid UTF-8: %q", got)
	}
	if len(got) > 9 {
		t.Errorf("length %d exceeds ceiling", len(got))
	}
}

func TestSanitize_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.String().Draw(t, "text")
		maxLen := rapid.IntRange(0, 64).Draw(t, "maxLen")

		got := Sanitize(text, maxLen)

		if maxLen > 0 && len(got) > maxLen {
			t.Fatalf("length %d exceeds ceiling %d", len(got), maxLen)
		}
		if !utf8.ValidString(got) {
			t.Fatalf("invalid UTF-8: %q", got)
		}
		for _, r := range got {
			if unicode.IsControl(r) {
				t.Fatalf("control rune in output: %q", got)
			}
		}
	})
}
