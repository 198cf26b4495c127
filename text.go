package whiteboard

import (
	"strings"
	"sync"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/text/unicode/norm"
)

// defaultFontSource parses Go Regular once per process.
var defaultFontSource = sync.OnceValues(func() (*text.FontSource, error) {
	return text.NewFontSource(goregular.TTF)
})

// DefaultFontSource returns the font used by the text tool when no
// WithFontSource option is given.
func DefaultFontSource() (*text.FontSource, error) {
	return defaultFontSource()
}

// TextLines normalizes buf to NFC and splits it into lines. It returns nil
// when buf holds only whitespace.
func TextLines(buf string) []string {
	buf = norm.NFC.String(buf)
	if strings.TrimSpace(buf) == "" {
		return nil
	}
	buf = strings.ReplaceAll(buf, "\r\n", "\n")
	return strings.Split(buf, "\n")
}

// dropLastRune removes the last rune of s.
func dropLastRune(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(r[:len(r)-1])
}
