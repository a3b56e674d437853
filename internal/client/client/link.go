package client

import (
	"net/url"
	"strings"

	"github.com/tomnomnom/linkheader"
)

// parseLink parses a Link header into rel -> URL. Entries whose target
// does not parse are skipped.
func parseLink(header string) map[string]*url.URL {
	links := map[string]*url.URL{}
	for _, l := range linkheader.Parse(escapeCommas(header)) {
		u, err := url.Parse(l.URL)
		if err != nil {
			continue
		}
		for _, rel := range strings.Fields(l.Rel) {
			links[rel] = u
		}
	}
	return links
}

// escapeCommas percent-encodes commas inside <targets> and quoted parameter
// values; linkheader.Parse splits entries on every comma.
func escapeCommas(header string) string {
	if !strings.ContainsAny(header, `"<`) {
		return header
	}
	var b strings.Builder
	b.Grow(len(header))
	inQuote, inTarget := false, false
	for _, r := range header {
		switch {
		case r == '"' && !inTarget:
			inQuote = !inQuote
		case r == '<' && !inQuote:
			inTarget = true
		case r == '>' && !inQuote:
			inTarget = false
		case r == ',' && (inQuote || inTarget):
			b.WriteString("%2C")
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// cursors extracts max_id of rel="next" and min_id of rel="prev".
func cursors(header string) (nextMaxID, prevMinID string) {
	links := parseLink(header)
	if next, ok := links["next"]; ok {
		nextMaxID = next.Query().Get("max_id")
	}
	if prev, ok := links["prev"]; ok {
		prevMinID = prev.Query().Get("min_id")
		if prevMinID == "" {
			prevMinID = prev.Query().Get("since_id")
		}
	}
	return nextMaxID, prevMinID
}
