package uploads

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

var imageExts = map[string]bool{"png": true, "jpg": true, "jpeg": true, "gif": true}

// SecureFilename reduces name to an ASCII filename safe to join to the upload
// directory: accents are folded, path separators and other characters are
// dropped, whitespace becomes "_". It may return "".
func SecureFilename(name string) string {
	decomposed := norm.NFKD.String(name)
	var b strings.Builder
	for _, r := range decomposed {
		if r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	s := b.String()
	s = strings.NewReplacer("/", " ", "\\", " ").Replace(s)
	s = strings.Join(strings.Fields(s), "_")
	s = unsafeChars.ReplaceAllString(s, "")
	return strings.Trim(s, "._")
}

// AllowedImage reports whether the extension is png, jpg, jpeg or gif.
func AllowedImage(name string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	return imageExts[ext]
}
