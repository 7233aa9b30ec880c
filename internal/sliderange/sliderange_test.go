package sliderange

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name  string
		expr  string
		total int
		want  []int
	}{
		{"empty selects all", "", 10, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
		{"mixed with out-of-range single", "3-6,1,20", 10, []int{1, 3, 4, 5, 6}},
		{"overlap deduplicated", "2-4,3,4-5", 8, []int{2, 3, 4, 5}},
		{"range clipped to deck", "7-99", 9, []int{7, 8, 9}},
		{"open start", "-3", 10, []int{1, 2, 3}},
		{"open end", "8-", 10, []int{8, 9, 10}},
		{"malformed tokens skipped", "2,abc,5-x,4", 10, []int{2, 4}},
		{"descending range skipped", "6-3,1", 10, []int{1}},
		{"nothing matches", "30-40", 10, []int{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Parse(tc.expr, tc.total)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Parse(%q, %d) = %v, want %v", tc.expr, tc.total, got, tc.want)
			}
		})
	}
}

func TestParseEmptyDeck(t *testing.T) {
	if got := Parse("1-5", 0); got != nil {
		t.Fatalf("Parse on empty deck = %v, want nil", got)
	}
}
