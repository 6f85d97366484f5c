package tagutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var LowerCaser = cases.Lower(language.English)

// Normalize brings a tag category or value to its canonical stored form.
// Matching elsewhere (filters, garment ranking) assumes this casing.
func Normalize(value string) string {
	return LowerCaser.String(strings.TrimSpace(value))
}
