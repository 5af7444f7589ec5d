package models

import "time"

// TimestampFormat is the ISO-8601 instant with millisecond precision used on the wire
// (e.g. 2026-10-14T09:30:00.000Z).
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

const (
	MinRating = 0
	MaxRating = 5
)

type StoreSearchQuery struct {
	Location  string  `json:"location"`
	Type      string  `json:"type"`
	MinRating float64 `json:"minRating"`
}

// Equal reports whether both queries describe the same search.
func (q StoreSearchQuery) Equal(other StoreSearchQuery) bool {
	return q.Location == other.Location && q.Type == other.Type && q.MinRating == other.MinRating
}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type GeocodedLocation struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	DisplayName string  `json:"displayName"`
}

func (g GeocodedLocation) Center() LatLng {
	return LatLng{Lat: g.Lat, Lng: g.Lng}
}

type Store struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Rating  float64 `json:"rating"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Type    string  `json:"type"`
}

type StoreSearchResponse struct {
	Query     StoreSearchQuery  `json:"query"`
	Geocoded  *GeocodedLocation `json:"geocoded"`
	Stores    []Store           `json:"stores"`
	Timestamp string            `json:"timestamp"`
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

// ClampRating bounds an upstream rating to the [MinRating, MaxRating] range.
func ClampRating(rating float64) float64 {
	if rating < MinRating {
		return MinRating
	}
	if rating > MaxRating {
		return MaxRating
	}
	return rating
}
