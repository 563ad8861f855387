// Package daterange extracts normalized date ranges from natural-language
// discovery request text and scores document date overlap against them.
package daterange

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/errors"
)

// Range is the normalized result of parsing a date phrase.
//
// Exactly one of two shapes is produced for a successful parse: an absolute
// range (Start and/or End set) or a relative one (RelativeMarker set,
// IsRelative true, End nil).  A Range with no start, no end, and no marker
// means "no date constraint".
type Range struct {
	Start *time.Time `json:"start_date"`
	End   *time.Time `json:"end_date"`

	// RelativeMarker holds a "relative:-Nmonths" / "relative:-Nyears"
	// marker when the phrase was relative ("the past 6 months").  The
	// marker is resolved against the clock at match time, not parse time,
	// so the same stored range drifts forward with "now".
	RelativeMarker string `json:"relative_marker,omitempty"`

	IsRelative   bool   `json:"is_relative"`
	IsOpenEnded  bool   `json:"is_open_ended"`
	OriginalText string `json:"original_text,omitempty"`
}

// IsZero reports whether the range carries no constraint at all.
func (r Range) IsZero() bool {
	return r.Start == nil && r.End == nil && r.RelativeMarker == ""
}

// Overlap is the result of matching one document against a Range.
type Overlap struct {
	Matches           bool `json:"matches"`
	OverlapPercentage int  `json:"overlap_percentage"`
	OverlapDays       int  `json:"overlap_days"`
	TotalDays         int  `json:"total_days"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Parser
// ─────────────────────────────────────────────────────────────────────────────

// Parser extracts Ranges from text.  The clock is injectable so relative
// resolution stays deterministic in tests.
type Parser struct {
	now func() time.Time
}

// Option customises a Parser.
type Option func(*Parser)

// WithNow overrides the clock used to resolve relative markers and to close
// open-ended ranges during overlap matching.
func WithNow(now func() time.Time) Option {
	return func(p *Parser) { p.now = now }
}

// NewParser returns a Parser using the real clock unless overridden.
func NewParser(opts ...Option) *Parser {
	p := &Parser{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// monthNames maps full month names and common abbreviations to time.Month.
var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sept": time.September, "sep": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

const monthAlt = `(?:january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept|sep|oct|nov|dec)`

// Patterns are tried in this fixed priority order; the first match wins.
var (
	dateToken      = `(?:` + monthAlt + `\.?\s+\d{1,2},?\s+\d{4}|` + monthAlt + `\.?\s+\d{4}|\d{4})`
	reFromTo       = regexp.MustCompile(`from\s+(.+?)\s+(?:to|through|until)\s+(present|current|now|today|` + dateToken + `)`)
	reDateSuffix   = regexp.MustCompile(dateToken + `$`)
	reYearSpan     = regexp.MustCompile(`(?:for\s+the\s+)?years?\s+(\d{4})\s*[-–]\s*(\d{4})`)
	reRelative     = regexp.MustCompile(`(?:for\s+|the\s+)?(?:past|last)\s+(\d+)\s+(months?|years?)`)
	reSingleYear   = regexp.MustCompile(`(?:during\s+)?(?:calendar\s+)?year\s+(\d{4})`)
	reExplicitSpan = regexp.MustCompile(monthAlt + `\.?\s+\d{1,2},?\s+\d{4}\s+(?:through|to|until)\s+` + monthAlt + `\.?\s+\d{1,2},?\s+\d{4}`)
	reOpenEnd      = regexp.MustCompile(`present|current|now|today`)

	reBareYear  = regexp.MustCompile(`^(\d{4})$`)
	reMonthYear = regexp.MustCompile(`^(` + monthAlt + `)\.?\s+(\d{4})$`)
	reMonthDay  = regexp.MustCompile(`^(` + monthAlt + `)\.?\s+(\d{1,2}),?\s+(\d{4})$`)

	reMarker = regexp.MustCompile(`^relative:-(\d+)(months|years)$`)
)

// ParseRange tries each pattern in priority order against the lowercased
// text and returns the first match; a zero Range when nothing matches.
func (p *Parser) ParseRange(text string) Range {
	lower := strings.ToLower(text)

	// 1. "from X to/through/until Y"
	if m := reFromTo.FindStringSubmatch(lower); m != nil {
		r := Range{OriginalText: strings.TrimSpace(m[0])}
		// The start capture may carry leading prose ("the period january
		// 2020"); anchor on the trailing date token.
		startText := strings.TrimSpace(m[1])
		if tok := reDateSuffix.FindString(startText); tok != "" {
			startText = tok
		}
		if start, ok := ParseDate(startText); ok {
			r.Start = &start
		}
		if reOpenEnd.MatchString(m[2]) {
			r.IsOpenEnded = true
		} else if end, ok := ParseDate(strings.TrimSpace(m[2])); ok {
			r.End = &end
		}
		return r
	}

	// 2. "[for the] year(s) YYYY-YYYY"
	if m := reYearSpan.FindStringSubmatch(lower); m != nil {
		startYear, _ := strconv.Atoi(m[1])
		endYear, _ := strconv.Atoi(m[2])
		start := time.Date(startYear, time.January, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(endYear, time.December, 31, 0, 0, 0, 0, time.UTC)
		return Range{Start: &start, End: &end, OriginalText: strings.TrimSpace(m[0])}
	}

	// 3. "[for/the] past|last N months|years"
	if m := reRelative.FindStringSubmatch(lower); m != nil {
		unit := "months"
		if strings.HasPrefix(m[2], "year") {
			unit = "years"
		}
		return Range{
			RelativeMarker: fmt.Sprintf("relative:-%s%s", m[1], unit),
			IsRelative:     true,
			IsOpenEnded:    true,
			OriginalText:   strings.TrimSpace(m[0]),
		}
	}

	// 4. "[during] [calendar] year YYYY"
	if m := reSingleYear.FindStringSubmatch(lower); m != nil {
		year, _ := strconv.Atoi(m[1])
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
		return Range{Start: &start, End: &end, OriginalText: strings.TrimSpace(m[0])}
	}

	// 5. "Month DD[,] YYYY through|to|until Month DD[,] YYYY"
	if m := reExplicitSpan.FindStringSubmatch(lower); m != nil {
		parts := regexp.MustCompile(`\s+(?:through|to|until)\s+`).Split(m[0], 2)
		r := Range{OriginalText: strings.TrimSpace(m[0])}
		if start, ok := ParseDate(parts[0]); ok {
			r.Start = &start
		}
		if len(parts) == 2 {
			if end, ok := ParseDate(parts[1]); ok {
				r.End = &end
			}
		}
		return r
	}

	return Range{}
}

// ParseDate parses a single lowercase date phrase.  Supported shapes:
// a bare 4-digit year (January 1 of that year), "Month YYYY" (first of the
// month), and "Month DD[,] YYYY".
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(strings.ToLower(s))

	if m := reBareYear.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), true
	}
	if m := reMonthDay.FindStringSubmatch(s); m != nil {
		month := monthNames[m[1]]
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if day < 1 || day > 31 {
			return time.Time{}, false
		}
		return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
	}
	if m := reMonthYear.FindStringSubmatch(s); m != nil {
		month := monthNames[m[1]]
		year, _ := strconv.Atoi(m[2])
		return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// ResolveRelative converts a "relative:-Nmonths" / "relative:-Nyears" marker
// into an absolute date by subtracting from the current clock.  Resolution
// happens at call time, so two resolutions on different days differ; that is
// the intended semantics.
func (p *Parser) ResolveRelative(marker string) (time.Time, error) {
	m := reMarker.FindStringSubmatch(marker)
	if m == nil {
		return time.Time{}, pkgerrors.InvalidParam("unrecognized relative date marker").WithDetail(marker)
	}
	n, _ := strconv.Atoi(m[1])
	now := p.now().UTC()
	if m[2] == "years" {
		return now.AddDate(-n, 0, 0), nil
	}
	return now.AddDate(0, -n, 0), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Document overlap
// ─────────────────────────────────────────────────────────────────────────────

// inclusiveDays counts whole calendar days in [a, b], minimum 1.
func inclusiveDays(a, b time.Time) int {
	if b.Before(a) {
		return 0
	}
	return int(b.Sub(a).Hours()/24) + 1
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// MatchDocument computes the overlap between a document's date span and the
// requested Range.
//
// Rules:
//   - A Range with no constraint matches everything at 100%.
//   - A document with no date metadata never matches a constrained range.
//   - Otherwise the overlap of [docStart, docEnd-or-docStart] and
//     [rangeStart-or-epoch, rangeEnd-or-now] is computed; the percentage is
//     overlap days over the document's own span (minimum one day), rounded
//     and capped at 100.
func (p *Parser) MatchDocument(docStart, docEnd *time.Time, r Range) Overlap {
	if r.IsZero() {
		return Overlap{Matches: true, OverlapPercentage: 100}
	}
	if docStart == nil && docEnd == nil {
		return Overlap{}
	}

	ds := docStart
	if ds == nil {
		ds = docEnd
	}
	de := docEnd
	if de == nil {
		de = ds
	}

	rangeStart := time.Unix(0, 0).UTC()
	if r.IsRelative {
		if resolved, err := p.ResolveRelative(r.RelativeMarker); err == nil {
			rangeStart = resolved
		}
	} else if r.Start != nil {
		rangeStart = *r.Start
	}
	rangeEnd := p.now().UTC()
	if r.End != nil {
		rangeEnd = *r.End
	}

	overlapStart := maxTime(*ds, rangeStart)
	overlapEnd := minTime(*de, rangeEnd)
	if overlapEnd.Before(overlapStart) {
		return Overlap{}
	}

	totalDays := inclusiveDays(*ds, *de)
	if totalDays < 1 {
		totalDays = 1
	}
	overlapDays := inclusiveDays(overlapStart, overlapEnd)

	pct := int(math.Round(float64(overlapDays) / float64(totalDays) * 100))
	if pct > 100 {
		pct = 100
	}
	return Overlap{
		Matches:           true,
		OverlapPercentage: pct,
		OverlapDays:       overlapDays,
		TotalDays:         totalDays,
	}
}
