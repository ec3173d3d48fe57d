// Package query builds site-restricted search engine queries from a keyword,
// a recency window and a list of saved portals. It performs no I/O; the
// caller supplies the current time.
package query

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// SearchEndpoint is the search engine URL a query is appended to.
const SearchEndpoint = "https://www.google.com/search?q="

// DateRange selects how far back results may be dated.
type DateRange string

const (
	RangeAny       DateRange = ""
	RangeToday     DateRange = "today"
	RangeThisWeek  DateRange = "this-week"
	RangeThisMonth DateRange = "this-month"
)

// monthLookback is the fixed window used for RangeThisMonth.
const monthLookback = 31

// Params are the inputs of Build.
type Params struct {
	Keyword       string
	DateRange     DateRange
	Sites         []string
	ExcludeHybrid bool
	ExcludeOnsite bool
}

// ErrEmptyKeyword is returned by Build when the keyword is blank.
var ErrEmptyKeyword = fmt.Errorf("query: keyword is required")

// Build composes
//
//	{siteFilter} "{keyword}" after:{YYYY-MM-DD} Remote[ -hybrid][ -onsite]
//
// The separator between the site filter and the keyword is always one space,
// so an empty site list yields a leading space.
func Build(p Params, now time.Time) (string, error) {
	if strings.TrimSpace(p.Keyword) == "" {
		return "", ErrEmptyKeyword
	}

	var b strings.Builder
	b.WriteString(SiteFilter(p.Sites))
	b.WriteString(` "`)
	b.WriteString(p.Keyword)
	b.WriteString(`" after:`)
	b.WriteString(AfterDate(p.DateRange, now))
	b.WriteString(" Remote")
	if p.ExcludeHybrid {
		b.WriteString(" -hybrid")
	}
	if p.ExcludeOnsite {
		b.WriteString(" -onsite")
	}
	return b.String(), nil
}

// SiteFilter returns "(site:a OR site:b ...)" in input order, or "" for no
// sites.
func SiteFilter(sites []string) string {
	if len(sites) == 0 {
		return ""
	}
	parts := make([]string, len(sites))
	for i, s := range sites {
		parts[i] = "site:" + s
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

// AfterDate returns the lower date bound for r as YYYY-MM-DD in now's
// location. Unknown ranges behave like RangeAny, which is today.
func AfterDate(r DateRange, now time.Time) string {
	d := now
	switch r {
	case RangeThisWeek:
		d = now.AddDate(0, 0, -7)
	case RangeThisMonth:
		d = now.AddDate(0, 0, -monthLookback)
	}
	return d.Format(time.DateOnly)
}

// ParseDateRange maps a request value onto a DateRange. Anything other than
// the three named windows is RangeAny.
func ParseDateRange(s string) DateRange {
	switch r := DateRange(strings.TrimSpace(s)); r {
	case RangeToday, RangeThisWeek, RangeThisMonth:
		return r
	default:
		return RangeAny
	}
}

// SearchURL returns the URL that runs q on the search engine.
func SearchURL(q string) string {
	return SearchEndpoint + url.QueryEscape(q)
}
