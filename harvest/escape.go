package harvest

import (
	"path"
	"strings"
)

// characters left as is by ECMAScript encodeURI, besides ASCII letters and
// digits. Sphinx writes navigation hrefs in this form.
const uriUnescaped = ";,/?:@&=+$#-_.!~*'()"

func encodeURI(s string) string {
	b := strings.Builder{}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') ||
			strings.IndexByte(uriUnescaped, c) >= 0 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte("0123456789ABCDEF"[c>>4])
		b.WriteByte("0123456789ABCDEF"[c&15])
	}
	return b.String()
}

// withSuffix replaces the extension of the last path element of p.
func withSuffix(p string, suffix string) string {
	return strings.TrimSuffix(p, path.Ext(p)) + suffix
}

// navPath is the href under which the rendered navigation links file.
func navPath(file string) string {
	if file == "#" {
		return file
	}
	return encodeURI(withSuffix(file, ".html"))
}
