package googlemaps

import (
	"context"
	"net/url"
	"strconv"

	"github.com/meghashyamc/storefinder/models"
	"github.com/tidwall/gjson"
)

// SearchRadiusMeters is fixed for every nearby search.
const SearchRadiusMeters = 3000

const defaultUpstreamCategory = "establishment"

var upstreamCategories = map[string]string{
	"restaurants":   "restaurant",
	"services":      "service",
	"cafes":         "cafe",
	"retail":        "store",
	"entertainment": "movie_theater",
	"all":           defaultUpstreamCategory,
	"":              defaultUpstreamCategory,
}

// UpstreamCategory maps a category tag to the places vocabulary. Unknown tags
// map to the generic establishment category.
func UpstreamCategory(tag string) string {
	if category, ok := upstreamCategories[tag]; ok {
		return category
	}
	return defaultUpstreamCategory
}

// Nearby returns the places on the first result page around center whose
// rating is at least minRating, in upstream order. The returned slice is
// never nil, even alongside an error.
func (c *Client) Nearby(ctx context.Context, center models.LatLng, tag string, minRating float64) ([]models.Store, error) {
	stores := []models.Store{}
	if c.apiKey == "" {
		return stores, c.missingAPIKey(serviceNearby)
	}

	params := url.Values{}
	params.Set("location", formatCoordinate(center.Lat)+","+formatCoordinate(center.Lng))
	params.Set("radius", strconv.Itoa(SearchRadiusMeters))
	params.Set("type", UpstreamCategory(tag))

	body, err := c.get(ctx, serviceNearby, c.placesEndpoint, params)
	if err != nil {
		return stores, err
	}

	if status := gjson.GetBytes(body, "status").String(); status == "REQUEST_DENIED" {
		return stores, errorForStatus(serviceNearby, status)
	}

	results := gjson.GetBytes(body, "results")
	if !results.IsArray() {
		return stores, nil
	}

	for _, place := range results.Array() {
		// A missing rating reads as 0.
		rating := place.Get("rating").Float()
		if rating < minRating {
			continue
		}
		stores = append(stores, models.Store{
			ID:      place.Get("place_id").String(),
			Name:    place.Get("name").String(),
			Address: placeAddress(place),
			Rating:  models.ClampRating(rating),
			Lat:     place.Get("geometry.location.lat").Float(),
			Lng:     place.Get("geometry.location.lng").Float(),
			Type:    tag,
		})
	}

	c.logger.Debug("found nearby places", "count", len(stores), "upstream_count", len(results.Array()), "type", tag)
	return stores, nil
}

func placeAddress(place gjson.Result) string {
	if vicinity := place.Get("vicinity").String(); vicinity != "" {
		return vicinity
	}
	return place.Get("formatted_address").String()
}

func formatCoordinate(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
