package models

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }

func TestPriceLevelString(t *testing.T) {
	tests := []struct {
		name  string
		level *int
		want  string
	}{
		{"absent", nil, "$"},
		{"level 0", intPtr(0), "$"},
		{"level 1", intPtr(1), "$$"},
		{"level 2", intPtr(2), "$$$"},
		{"level 4", intPtr(4), "$$$$$"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Place{PriceLevel: tt.level}
			got := p.PriceLevelString()
			assert.Equal(t, tt.want, got)

			expectedLen := 1
			if tt.level != nil {
				expectedLen = *tt.level + 1
			}
			assert.Len(t, got, expectedLen)
		})
	}
}

func TestRatingString(t *testing.T) {
	tests := []struct {
		name   string
		rating *float64
		total  *int
		want   string
	}{
		{"absent rating", nil, intPtr(120), ""},
		{"3.7 with count", floatPtr(3.7), intPtr(120), "★★★☆☆ (120)"},
		{"missing count renders zero", floatPtr(4.2), nil, "★★★★☆ (0)"},
		{"perfect", floatPtr(5.0), intPtr(3), "★★★★★ (3)"},
		{"zero", floatPtr(0), intPtr(0), "☆☆☆☆☆ (0)"},
		{"out of range is clamped", floatPtr(7.5), intPtr(1), "★★★★★ (1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Place{Rating: tt.rating, UserRatingsTotal: tt.total}
			assert.Equal(t, tt.want, p.RatingString())
		})
	}
}

func TestRatingString_GlyphCounts(t *testing.T) {
	p := Place{Rating: floatPtr(3.7), UserRatingsTotal: intPtr(120)}
	got := p.RatingString()

	assert.Equal(t, 3, strings.Count(got, FilledRatingGlyph))
	assert.Equal(t, 2, strings.Count(got, EmptyRatingGlyph))
	assert.True(t, strings.HasSuffix(got, " (120)"))
	assert.Equal(t, 11, utf8.RuneCountInString(got))
}

func TestDistanceString_NoReference(t *testing.T) {
	p := Place{Location: Coordinate{Latitude: 40.0, Longitude: -74.0}}
	assert.Equal(t, "", p.DistanceString(nil, "en-US"))
}

func TestDistanceString_WithReference(t *testing.T) {
	p := Place{Location: Coordinate{Latitude: 41.0, Longitude: 0}}
	ref := &Coordinate{Latitude: 40.0, Longitude: 0}

	got := p.DistanceString(ref, "en-US")
	assert.NotEmpty(t, got)
	assert.True(t, strings.HasSuffix(got, " away"), "got %q", got)
	assert.Equal(t, "69.09 mi away", got)
}

func TestFormatDistance(t *testing.T) {
	oneDegree := Coordinate{Latitude: 0}.DistanceTo(Coordinate{Latitude: 1})

	tests := []struct {
		name   string
		meters float64
		locale string
		want   string
	}{
		{"metric kilometres with comma decimal", oneDegree, "de-DE", "111,19 km"},
		{"metric metres", 250, "de-DE", "250 m"},
		{"imperial feet", 30.48, "en-US", "100 ft"},
		{"imperial miles", oneDegree, "en-US", "69.09 mi"},
		{"invalid locale falls back to default", 30.48, "not a locale!", "100 ft"},
		{"empty locale falls back to default", 30.48, "", "100 ft"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDistance(tt.meters, tt.locale))
		})
	}
}

func TestDistanceTo(t *testing.T) {
	a := Coordinate{Latitude: 51.5007, Longitude: -0.1246}
	assert.Equal(t, 0.0, a.DistanceTo(a))

	oneDegree := Coordinate{Latitude: 0}.DistanceTo(Coordinate{Latitude: 1})
	assert.InDelta(t, 111194.93, oneDegree, 0.01)

	// symmetric
	b := Coordinate{Latitude: 40.6892, Longitude: -74.0445}
	assert.InDelta(t, a.DistanceTo(b), b.DistanceTo(a), 1e-6)
	assert.False(t, math.IsNaN(a.DistanceTo(b)))
}

func TestOpenStatus(t *testing.T) {
	assert.Equal(t, "Closed", Place{}.OpenStatus())
	assert.Equal(t, "Open", Place{IsOpen: true}.OpenStatus())
	assert.Equal(t, "Open", Place{IsOpen: true, PermanentlyClosed: boolPtr(false)}.OpenStatus())
	assert.Equal(t, "Permanently closed", Place{IsOpen: true, PermanentlyClosed: boolPtr(true)}.OpenStatus())
}

func TestNewSearchQuery(t *testing.T) {
	center := Coordinate{Latitude: 1, Longitude: 2}

	q := NewSearchQuery(center, "")
	assert.Nil(t, q.Keyword)
	assert.Equal(t, center, q.Center)

	q = NewSearchQuery(center, "sushi")
	if assert.NotNil(t, q.Keyword) {
		assert.Equal(t, "sushi", *q.Keyword)
	}
}
