package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
}

func newTestParser() *Parser {
	return NewParser(WithNow(fixedNow))
}

func datePtr(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestParseRange_FromTo(t *testing.T) {
	p := newTestParser()

	r := p.ParseRange("All invoices from January 2020 to March 2021.")
	require.NotNil(t, r.Start)
	require.NotNil(t, r.End)
	assert.Equal(t, *datePtr(2020, time.January, 1), *r.Start)
	assert.Equal(t, *datePtr(2021, time.March, 1), *r.End)
	assert.False(t, r.IsRelative)
	assert.False(t, r.IsOpenEnded)
}

func TestParseRange_FromToPresent(t *testing.T) {
	p := newTestParser()

	r := p.ParseRange("All communications from 2019 to present")
	require.NotNil(t, r.Start)
	assert.Equal(t, *datePtr(2019, time.January, 1), *r.Start)
	assert.Nil(t, r.End)
	assert.True(t, r.IsOpenEnded)
}

func TestParseRange_FromToWithLeadingProse(t *testing.T) {
	p := newTestParser()

	r := p.ParseRange("records from the period January 2020 through December 2021")
	require.NotNil(t, r.Start)
	require.NotNil(t, r.End)
	assert.Equal(t, *datePtr(2020, time.January, 1), *r.Start)
	assert.Equal(t, *datePtr(2021, time.December, 1), *r.End)
}

func TestParseRange_YearSpan(t *testing.T) {
	p := newTestParser()

	r := p.ParseRange("Produce all bank statements for the years 2020-2023.")
	require.NotNil(t, r.Start)
	require.NotNil(t, r.End)
	assert.Equal(t, *datePtr(2020, time.January, 1), *r.Start)
	assert.Equal(t, *datePtr(2023, time.December, 31), *r.End)
}

func TestParseRange_RelativeMonths(t *testing.T) {
	p := newTestParser()

	r := p.ParseRange("statements for the past 6 months")
	assert.True(t, r.IsRelative)
	assert.True(t, r.IsOpenEnded)
	assert.Equal(t, "relative:-6months", r.RelativeMarker)
	assert.Nil(t, r.Start)
	assert.Nil(t, r.End)
}

func TestParseRange_RelativeYears(t *testing.T) {
	p := newTestParser()

	r := p.ParseRange("all tax returns for the last 3 years")
	assert.True(t, r.IsRelative)
	assert.Equal(t, "relative:-3years", r.RelativeMarker)
}

func TestParseRange_SingleYear(t *testing.T) {
	p := newTestParser()

	r := p.ParseRange("all records during calendar year 2022")
	require.NotNil(t, r.Start)
	require.NotNil(t, r.End)
	assert.Equal(t, *datePtr(2022, time.January, 1), *r.Start)
	assert.Equal(t, *datePtr(2022, time.December, 31), *r.End)
}

func TestParseRange_ExplicitSpan(t *testing.T) {
	p := newTestParser()

	r := p.ParseRange("documents dated January 15, 2020 through March 31, 2021")
	require.NotNil(t, r.Start)
	require.NotNil(t, r.End)
	assert.Equal(t, *datePtr(2020, time.January, 15), *r.Start)
	assert.Equal(t, *datePtr(2021, time.March, 31), *r.End)
}

func TestParseRange_NoDates(t *testing.T) {
	p := newTestParser()

	r := p.ParseRange("All correspondence between the parties.")
	assert.True(t, r.IsZero())
}

func TestParseDate_Shapes(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2020", time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC), true},
		{"march 2021", time.Date(2021, time.March, 1, 0, 0, 0, 0, time.UTC), true},
		{"Sept 2021", time.Date(2021, time.September, 1, 0, 0, 0, 0, time.UTC), true},
		{"january 15, 2020", time.Date(2020, time.January, 15, 0, 0, 0, 0, time.UTC), true},
		{"feb 3 2019", time.Date(2019, time.February, 3, 0, 0, 0, 0, time.UTC), true},
		{"not a date", time.Time{}, false},
		{"january 45, 2020", time.Time{}, false},
	}
	for _, tc := range cases {
		got, ok := ParseDate(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, got, "input %q", tc.in)
		}
	}
}

func TestResolveRelative(t *testing.T) {
	p := newTestParser()

	got, err := p.ResolveRelative("relative:-6months")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, time.December, 15, 12, 0, 0, 0, time.UTC), got)

	got, err = p.ResolveRelative("relative:-3years")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, time.June, 15, 12, 0, 0, 0, time.UTC), got)

	_, err = p.ResolveRelative("sometime last week")
	assert.Error(t, err)
}

func TestMatchDocument_UnconstrainedRange(t *testing.T) {
	p := newTestParser()

	ov := p.MatchDocument(datePtr(2020, time.March, 1), nil, Range{})
	assert.True(t, ov.Matches)
	assert.Equal(t, 100, ov.OverlapPercentage)
}

func TestMatchDocument_NoDocumentDates(t *testing.T) {
	p := newTestParser()
	r := p.ParseRange("for the years 2020-2023")

	ov := p.MatchDocument(nil, nil, r)
	assert.False(t, ov.Matches)
	assert.Equal(t, 0, ov.OverlapPercentage)
}

func TestMatchDocument_FullyInside(t *testing.T) {
	p := newTestParser()
	r := p.ParseRange("for the years 2020-2023")

	ov := p.MatchDocument(datePtr(2021, time.February, 1), datePtr(2021, time.April, 30), r)
	assert.True(t, ov.Matches)
	assert.Equal(t, 100, ov.OverlapPercentage)
}

func TestMatchDocument_SingleDayInside(t *testing.T) {
	p := newTestParser()
	r := p.ParseRange("during calendar year 2022")

	ov := p.MatchDocument(datePtr(2022, time.July, 4), nil, r)
	assert.True(t, ov.Matches)
	assert.Equal(t, 100, ov.OverlapPercentage)
	assert.Equal(t, 1, ov.TotalDays)
}

func TestMatchDocument_PartialOverlap(t *testing.T) {
	p := newTestParser()
	r := p.ParseRange("during calendar year 2022")

	// Document spans Dec 2021 through Jan 2022; roughly half inside.
	ov := p.MatchDocument(datePtr(2021, time.December, 1), datePtr(2022, time.January, 31), r)
	assert.True(t, ov.Matches)
	assert.Greater(t, ov.OverlapPercentage, 0)
	assert.Less(t, ov.OverlapPercentage, 100)
	assert.Equal(t, 31, ov.OverlapDays)
	assert.Equal(t, 62, ov.TotalDays)
	assert.Equal(t, 50, ov.OverlapPercentage)
}

func TestMatchDocument_NoOverlap(t *testing.T) {
	p := newTestParser()
	r := p.ParseRange("during calendar year 2022")

	ov := p.MatchDocument(datePtr(2019, time.May, 1), datePtr(2019, time.June, 1), r)
	assert.False(t, ov.Matches)
}

func TestMatchDocument_RelativeRange(t *testing.T) {
	p := newTestParser()
	r := p.ParseRange("for the past 6 months")

	// Inside the trailing six-month window ending 2024-06-15.
	ov := p.MatchDocument(datePtr(2024, time.March, 1), nil, r)
	assert.True(t, ov.Matches)
	assert.Equal(t, 100, ov.OverlapPercentage)

	// Well before the window.
	ov = p.MatchDocument(datePtr(2023, time.January, 1), nil, r)
	assert.False(t, ov.Matches)
}
