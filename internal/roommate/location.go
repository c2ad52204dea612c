// internal/roommate/location.go

package roommate

import (
	"math"
	"strconv"
	"strings"
)

const (
	locationExact         = 40
	locationSameCity      = 35
	locationWordBase      = 25
	locationWordStep      = 5
	locationCoordFallback = 5
)

// Neighbourhood qualifiers that say nothing about the city itself.
var locationStopWords = map[string]struct{}{
	"downtown": {},
	"midtown":  {},
	"uptown":   {},
	"east":     {},
	"west":     {},
	"north":    {},
	"south":    {},
}

// ScoreLocation scores how close two free-text locations are, from 0 to 40.
// Rules are checked in order and the first one that applies wins.
func ScoreLocation(a, b string) int {
	locA := strings.ToLower(strings.TrimSpace(a))
	locB := strings.ToLower(strings.TrimSpace(b))

	if locA == locB {
		return locationExact
	}

	if cityToken(locA) == cityToken(locB) {
		return locationSameCity
	}

	if common := commonWords(locA, locB); common > 0 {
		return locationWordBase + locationWordStep*common
	}

	if score, ok := coordinateScore(locA, locB); ok {
		return score
	}

	return 0
}

func cityToken(loc string) string {
	city, _, _ := strings.Cut(loc, ",")
	return strings.TrimSpace(city)
}

func locationWords(loc string) map[string]struct{} {
	fields := strings.FieldsFunc(loc, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	words := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, stop := locationStopWords[f]; stop {
			continue
		}
		words[f] = struct{}{}
	}
	return words
}

func commonWords(a, b string) int {
	wordsA := locationWords(a)
	wordsB := locationWords(b)
	count := 0
	for w := range wordsA {
		if _, ok := wordsB[w]; ok {
			count++
		}
	}
	return count
}

// parseCoordinates reads "lat,lng". Anything else is not a coordinate.
func parseCoordinates(loc string) (lat, lng float64, ok bool) {
	parts := strings.Split(loc, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	lng, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lng, true
}

// coordinateScore uses plain Euclidean distance in degrees.
func coordinateScore(a, b string) (int, bool) {
	latA, lngA, okA := parseCoordinates(a)
	latB, lngB, okB := parseCoordinates(b)
	if !okA || !okB {
		return 0, false
	}

	d := math.Hypot(latA-latB, lngA-lngB)
	switch {
	case d < 0.01:
		return 35, true
	case d < 0.05:
		return 25, true
	case d < 0.1:
		return 15, true
	default:
		return locationCoordFallback, true
	}
}
