package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var textPolicy = bluemonday.StrictPolicy()

// CleanText strips any HTML markup from user-submitted content fields and
// trims surrounding whitespace.
func CleanText(value string) string {
	return strings.TrimSpace(textPolicy.Sanitize(value))
}
