// Package slugs turns report titles into filesystem- and header-safe names.
package slugs

import (
	"strings"
	"time"

	goslug "github.com/gosimple/slug"
)

// ComponentSlug converts a string to a URL-safe slug appropriate for a file
// name component.
func ComponentSlug(s string) string {
	slugged := goslug.Make(s)
	if slugged == "" {
		slugged = strings.ToLower(strings.Join(strings.Fields(s), "-"))
	}
	return slugged
}

// DatedFilename builds "<slug>-<yyyy-mm-dd><ext>" from a title, e.g.
// "BOX GROUP REPORT" on 2024-03-05 becomes "box-group-report-2024-03-05.xlsx".
func DatedFilename(title string, day time.Time, ext string) string {
	name := ComponentSlug(title)
	if name == "" {
		name = "report"
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return name + "-" + day.Format(time.DateOnly) + ext
}
