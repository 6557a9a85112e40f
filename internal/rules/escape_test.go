package rules

import "testing"

func TestEscapeUnescapeRoundTrip(t *testing.T) {
	cases := []string{
		"plain text",
		"a & b",
		"it's <b>bold</b>",
		`say "hi" & wave`,
		"already &amp; escaped", // escapes the & of the entity too
	}
	for _, in := range cases {
		if got := Unescape(Escape(in)); got != in {
			t.Errorf("round trip of %q = %q", in, got)
		}
	}
}

func TestEscapeDoesNotDoubleEscape(t *testing.T) {
	if got := Escape("&"); got != "&amp;" {
		t.Errorf("Escape(&) = %q, want &amp;", got)
	}
	// Ampersand runs first, so the entity's own & is not re-escaped.
	if got := Escape("<"); got != "&lt;" {
		t.Errorf("Escape(<) = %q, want &lt;", got)
	}
}

func TestHasUnescapedAmpersand(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"no ampersand", false},
		{"a &amp; b", false},
		{"&apos;&quot;&lt;&gt;", false},
		{"&#13;&#10;", false},
		{"&#x1F4CA;", false},
		{"a & b", true},
		{"trailing &", true},
		{"&amp", true},     // missing semicolon
		{"&#;", true},      // no digits
		{"&#x;", true},     // no hex digits
		{"&unknown;", true}, // not an accepted entity
		{"profit &amp; loss & taxes", true},
	}
	for _, tt := range tests {
		if got := HasUnescapedAmpersand(tt.in); got != tt.want {
			t.Errorf("HasUnescapedAmpersand(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHasLiteralNewline(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"single line", false},
		{"// comment&#13;&#10;SUM([x])", false},
		{"// comment\nSUM([x])", true},
		{"mixed &#13;&#10; and\nliteral", false}, // encoded form present, accepted
	}
	for _, tt := range tests {
		if got := HasLiteralNewline(tt.in); got != tt.want {
			t.Errorf("HasLiteralNewline(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
