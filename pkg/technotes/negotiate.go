package technotes

import (
	"net/http"
	"strconv"
	"strings"
)

// accepts reports whether the Accept header of r admits mediaType, which
// must be a full type such as "text/html". The most specific matching range
// decides, and a range with q=0 refuses. A request without Accept accepts
// everything.
func accepts(r *http.Request, mediaType string) bool {
	header := r.Header.Values("Accept")
	if len(header) == 0 {
		return true
	}
	typ, sub, _ := strings.Cut(mediaType, "/")

	bestSpecificity, bestQ := -1, 0.0
	for _, line := range header {
		for _, part := range strings.Split(line, ",") {
			rangeType, q, ok := parseMediaRange(part)
			if !ok {
				continue
			}
			rt, rs, _ := strings.Cut(rangeType, "/")

			specificity := -1
			switch {
			case rt == typ && rs == sub:
				specificity = 2
			case rt == typ && rs == "*":
				specificity = 1
			case rt == "*" && rs == "*":
				specificity = 0
			}
			if specificity > bestSpecificity {
				bestSpecificity, bestQ = specificity, q
			}
		}
	}
	return bestSpecificity >= 0 && bestQ > 0
}

// parseMediaRange parses "type/subtype;param=value;q=0.5".
func parseMediaRange(s string) (string, float64, bool) {
	params := strings.Split(s, ";")
	rangeType := strings.ToLower(strings.TrimSpace(params[0]))
	if !strings.Contains(rangeType, "/") {
		return "", 0, false
	}

	q := 1.0
	for _, p := range params[1:] {
		k, v, ok := strings.Cut(strings.TrimSpace(p), "=")
		if !ok || strings.TrimSpace(k) != "q" {
			continue
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return "", 0, false
		}
		q = parsed
	}
	return rangeType, q, true
}
