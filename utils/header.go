package utils

import (
	"strings"

	"github.com/mozillazg/go-unidecode"
)

// SafeHeaderValue transliterates a string so it can travel in an HTTP
// header. Item titles can contain arbitrary unicode; headers cannot.
func SafeHeaderValue(value string) string {
	decoded := unidecode.Unidecode(value)
	// Strip anything still outside the printable ASCII range
	var b strings.Builder
	b.Grow(len(decoded))
	for _, char := range decoded {
		if char >= 0x20 && char < 0x7f {
			b.WriteRune(char)
		}
	}
	return b.String()
}
