package safety

import (
	"sort"
	"strings"
	"time"

	"safetyhub/domain/core"
	"safetyhub/domain/table"
)

// month is a calendar month as year*12 + (month-1).
type month int

func monthOf(t time.Time) month {
	return month(t.Year()*12 + int(t.Month()) - 1)
}

func (m month) key() string {
	return core.MonthKey(time.Date(int(m)/12, time.Month(int(m)%12+1), 1, 0, 0, 0, 0, time.UTC))
}

// monthlySeries is the observed months of a date column in ascending order
// with their incident counts.
type monthlySeries struct {
	months []month
	counts []int
}

// dateColumn returns the first column whose name contains "date" or "time".
func dateColumn(t *table.Table) (string, bool) {
	return t.FindColumn("date", "time")
}

// monthlyCounts buckets a date column by calendar month. Missing values are
// skipped; any unparseable value fails the whole column.
func monthlyCounts(t *table.Table, column string) (*monthlySeries, bool) {
	values, ok := t.Column(column)
	if !ok {
		return nil, false
	}
	tally := make(map[month]int)
	for _, v := range values {
		if v.IsMissing() {
			continue
		}
		d, ok := v.AsDate()
		if !ok {
			return nil, false
		}
		tally[monthOf(d)]++
	}
	s := &monthlySeries{}
	for m := range tally {
		s.months = append(s.months, m)
	}
	sort.Slice(s.months, func(i, j int) bool { return s.months[i] < s.months[j] })
	for _, m := range s.months {
		s.counts = append(s.counts, tally[m])
	}
	return s, true
}

// filled returns one count per month from the first to the last observed
// month, zero where nothing was recorded.
func (s *monthlySeries) filled() []float64 {
	if len(s.months) == 0 {
		return nil
	}
	first, last := s.months[0], s.months[len(s.months)-1]
	out := make([]float64, int(last-first)+1)
	for i, m := range s.months {
		out[m-first] = float64(s.counts[i])
	}
	return out
}

// trendCounts renders the series as "YYYY-MM" -> count in month order.
func (s *monthlySeries) trendCounts() table.Counts {
	out := make(table.Counts, len(s.months))
	for i, m := range s.months {
		out[i] = table.Count{Value: m.key(), Count: s.counts[i]}
	}
	return out
}

// countContaining counts string values whose lower-cased text contains any
// of subs. Non-string and missing values never match.
func countContaining(values []table.Value, subs ...string) int {
	n := 0
	for _, v := range values {
		if !v.IsString() {
			continue
		}
		lower := strings.ToLower(v.AsString())
		for _, sub := range subs {
			if strings.Contains(lower, sub) {
				n++
				break
			}
		}
	}
	return n
}

// columnValues returns the first column matching any fragment.
func columnValues(t *table.Table, fragments ...string) ([]table.Value, bool) {
	name, ok := t.FindColumn(fragments...)
	if !ok {
		return nil, false
	}
	return t.Column(name)
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
