// Package sliderange parses slide selection expressions like "3-6,1,12".
package sliderange

import (
	"sort"
	"strconv"
	"strings"
)

// Parse expands a selection expression against a deck of total slides.
// An empty expression selects every slide. Tokens are comma separated
// and are either single numbers or inclusive ranges ("4-7"). Open-ended
// ranges default the missing side: "-5" means 1-5 and "8-" means 8
// through the last slide. Malformed tokens and out-of-range values
// contribute nothing; they never fail the parse. The result is
// deduplicated and sorted ascending.
func Parse(expr string, total int) []int {
	if total < 1 {
		return nil
	}
	expr = strings.TrimSpace(expr)
	if expr == "" {
		all := make([]int, total)
		for i := range all {
			all[i] = i + 1
		}
		return all
	}

	seen := make(map[int]struct{})
	for _, token := range strings.Split(expr, ",") {
		lo, hi, ok := parseToken(strings.TrimSpace(token), total)
		if !ok {
			continue
		}
		for n := lo; n <= hi; n++ {
			if n >= 1 && n <= total {
				seen[n] = struct{}{}
			}
		}
	}

	slides := make([]int, 0, len(seen))
	for n := range seen {
		slides = append(slides, n)
	}
	sort.Ints(slides)
	return slides
}

func parseToken(token string, total int) (int, int, bool) {
	if token == "" {
		return 0, 0, false
	}
	lo, hi, isRange := strings.Cut(token, "-")
	if !isRange {
		n, err := strconv.Atoi(token)
		if err != nil {
			return 0, 0, false
		}
		return n, n, true
	}

	start := 1
	if s := strings.TrimSpace(lo); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, false
		}
		start = n
	}
	end := total
	if s := strings.TrimSpace(hi); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, false
		}
		end = n
	}
	if end < start {
		return 0, 0, false
	}
	return start, end, true
}
