package services

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// reportPolicy keeps the structural markup of a rendered case report and
// drops anything a headless browser could execute
var reportPolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("h1", "h2", "dl", "dt", "dd", "table", "tr", "th", "td", "p", "span")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^[a-z-]+$`)).Globally()
	return p
}()

// SanitizeReportHTML filters a rendered report body before it reaches Chrome.
// Escaped user text passes through unchanged.
func SanitizeReportHTML(fragment string) string {
	return reportPolicy.Sanitize(fragment)
}

// isBlank reports whether a required text field was left empty
func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
