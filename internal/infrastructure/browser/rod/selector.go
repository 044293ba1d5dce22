package rod

import (
	"regexp"
	"strings"
)

func regexpQuote(s string) string {
	return regexp.QuoteMeta(s)
}

// cssEscape escapes characters that would otherwise end an identifier in a
// CSS selector.
func cssEscape(ident string) string {
	var sb strings.Builder
	for i, r := range ident {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '-', r == '_', r >= 0x80:
			sb.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				sb.WriteString(`\3`)
				sb.WriteRune(r)
				sb.WriteByte(' ')
				continue
			}
			sb.WriteRune(r)
		default:
			sb.WriteByte('\\')
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
