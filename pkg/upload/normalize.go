package upload

import (
	"html"
	"strings"
)

var quoteStripper = strings.NewReplacer(`"`, "", "'", "")

// Normalize converts a filename into 7-bit ASCII: HTML entities are decoded,
// quotes removed, and every run of other characters collapsed into a single
// sep. Leading and trailing separators are trimmed. Only ASCII letters and
// digits survive, so multi-byte characters are replaced as a whole.
//
// Example:
//
//	upload.Normalize("Résumé &amp; CV (final).pdf", "_") // "R_sum_CV_final_pdf"
func Normalize(name, sep string) string {
	name = html.UnescapeString(name)
	name = quoteStripper.Replace(name)

	var b strings.Builder
	b.Grow(len(name))
	inRun := false
	for _, r := range name {
		if isASCIIAlnum(r) {
			b.WriteRune(r)
			inRun = false
			continue
		}
		if !inRun {
			b.WriteString(sep)
			inRun = true
		}
	}

	if sep == "" {
		return b.String()
	}
	return strings.Trim(b.String(), sep)
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
