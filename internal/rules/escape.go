package rules

import "strings"

// EncodedNewline is the canonical escaped line-break sequence for attribute
// text. Literal newlines inside formulas corrupt the attribute on save.
const EncodedNewline = "&#13;&#10;"

// escapePairs maps reserved markup characters to their entity forms.
// Ampersand must come first so Escape never double-escapes.
var escapePairs = [][2]string{
	{"&", "&amp;"},
	{"'", "&apos;"},
	{"<", "&lt;"},
	{">", "&gt;"},
	{`"`, "&quot;"},
}

// Escape renders reserved markup characters in their entity form.
func Escape(s string) string {
	for _, p := range escapePairs {
		s = strings.ReplaceAll(s, p[0], p[1])
	}
	return s
}

// Unescape is the exact inverse of Escape.
func Unescape(s string) string {
	for i := len(escapePairs) - 1; i >= 0; i-- {
		p := escapePairs[i]
		s = strings.ReplaceAll(s, p[1], p[0])
	}
	return s
}

// HasUnescapedAmpersand reports whether s contains a raw & that is not part
// of a character entity (&amp; &apos; &quot; &lt; &gt; &#NN; &#xHH;).
func HasUnescapedAmpersand(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '&' {
			continue
		}
		if !isEntityStart(s[i+1:]) {
			return true
		}
	}
	return false
}

func isEntityStart(rest string) bool {
	for _, name := range []string{"amp;", "apos;", "quot;", "lt;", "gt;"} {
		if strings.HasPrefix(rest, name) {
			return true
		}
	}
	if !strings.HasPrefix(rest, "#") {
		return false
	}
	body := rest[1:]
	hex := false
	if strings.HasPrefix(body, "x") || strings.HasPrefix(body, "X") {
		hex = true
		body = body[1:]
	}
	n := 0
	for n < len(body) && isEntityDigit(body[n], hex) {
		n++
	}
	return n > 0 && n < len(body) && body[n] == ';'
}

func isEntityDigit(b byte, hex bool) bool {
	if b >= '0' && b <= '9' {
		return true
	}
	if !hex {
		return false
	}
	return (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// HasLiteralNewline reports whether raw attribute text contains an actual
// line break instead of the canonical encoded sequence.
func HasLiteralNewline(raw string) bool {
	return strings.Contains(raw, "\n") && !strings.Contains(raw, "&#13;")
}
