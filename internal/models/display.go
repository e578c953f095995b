package models

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	PriceGlyph        = "$"
	FilledRatingGlyph = "★"
	EmptyRatingGlyph  = "☆"

	// DefaultLocale is used when no locale is supplied or it fails to parse
	DefaultLocale = "en-US"

	metersPerFoot = 0.3048
	metersPerMile = 1609.344
)

// Regions that express road distances in feet and miles
var imperialRegions = map[string]bool{
	"US": true,
	"GB": true,
	"LR": true,
	"MM": true,
}

// PriceLevelString renders the price level as repeated currency glyphs.
//
// The glyph count is (PriceLevel ?? 0) + 1: level 0 and an absent level both
// render a single glyph, level 4 renders five.
func (p Place) PriceLevelString() string {
	level := 0
	if p.PriceLevel != nil && *p.PriceLevel > 0 {
		level = *p.PriceLevel
	}
	return strings.Repeat(PriceGlyph, level+1)
}

// RatingString renders floor(rating) filled stars, the remainder of five as
// empty stars, then the rating count in parentheses. Empty when unrated.
func (p Place) RatingString() string {
	if p.Rating == nil {
		return ""
	}

	filled := int(math.Floor(*p.Rating))
	if filled < 0 {
		filled = 0
	}
	if filled > 5 {
		filled = 5
	}

	total := 0
	if p.UserRatingsTotal != nil {
		total = *p.UserRatingsTotal
	}

	return fmt.Sprintf("%s%s (%d)",
		strings.Repeat(FilledRatingGlyph, filled),
		strings.Repeat(EmptyRatingGlyph, 5-filled),
		total)
}

// DistanceMeters returns the great-circle distance from ref to the place
func (p Place) DistanceMeters(ref Coordinate) float64 {
	return ref.DistanceTo(p.Location)
}

// DistanceString formats the distance from ref to the place for the given
// BCP 47 locale, e.g. "350 m away" or "1.25 mi away". Empty when ref is nil.
func (p Place) DistanceString(ref *Coordinate, locale string) string {
	if ref == nil {
		return ""
	}
	return FormatDistance(p.DistanceMeters(*ref), locale) + " away"
}

// OpenStatus returns the short status label shown next to a place
func (p Place) OpenStatus() string {
	switch {
	case p.PermanentlyClosed != nil && *p.PermanentlyClosed:
		return "Permanently closed"
	case p.IsOpen:
		return "Open"
	default:
		return "Closed"
	}
}

// FormatDistance formats a distance in metres using the locale's number
// conventions and preferred length units, with at most two fraction digits.
func FormatDistance(meters float64, locale string) string {
	tag, err := language.Parse(locale)
	if err != nil || locale == "" {
		tag = language.MustParse(DefaultLocale)
	}

	value, unit := scaleDistance(meters, usesImperial(tag))

	printer := message.NewPrinter(tag)
	return printer.Sprintf("%v %s", number.Decimal(value, number.MaxFractionDigits(2)), unit)
}

func usesImperial(tag language.Tag) bool {
	region, _ := tag.Region()
	return imperialRegions[region.String()]
}

// scaleDistance picks the unit a person would naturally read the distance in
func scaleDistance(meters float64, imperial bool) (float64, string) {
	if imperial {
		feet := meters / metersPerFoot
		if feet < 1000 {
			return feet, "ft"
		}
		return meters / metersPerMile, "mi"
	}

	if meters < 1000 {
		return meters, "m"
	}
	return meters / 1000, "km"
}
