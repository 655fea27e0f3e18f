// Package clean strips markup from fetched article content so the text can
// be indexed and fed into generation prompts.
package clean

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Text converts an HTML fragment to plain text: scripts, styles and embeds
// are dropped, block boundaries become newlines, runs of whitespace collapse.
func Text(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, noscript, iframe").Remove()

	var sb strings.Builder
	doc.Find("body").Contents().Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(text)
	})

	return collapseWhitespace(sb.String()), nil
}

// StripBoilerplate removes a known source preamble and everything before it.
// Wikipedia parse output starts with a fixed banner that is noise for
// retrieval.
func StripBoilerplate(text, marker string) string {
	if idx := strings.Index(text, marker); idx >= 0 {
		return strings.TrimSpace(text[idx+len(marker):])
	}
	return text
}

func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		out = append(out, strings.Join(fields, " "))
	}
	return strings.Join(out, "\n")
}
