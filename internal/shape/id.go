package shape

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// AnchorID derives the symbolic identifier for an anchor, used to name
// its coordinate variables ("x<id>", "y<id>") inside equations.
//
// Shape names come from user input, so they are NFC-normalized first
// (two visually identical names must not produce two different
// variables) and every byte that is not an ASCII letter or digit maps
// to an underscore. Identifiers must stay unique within one solve; the
// engine disambiguates the rare post-sanitization collision.
func AnchorID(shapeName, key string) string {
	return sanitize(key) + "_" + sanitize(shapeName)
}

func sanitize(s string) string {
	s = norm.NFC.String(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
