package googlemaps

import (
	"context"
	"errors"
	"net/url"

	"github.com/meghashyamc/storefinder/models"
	"github.com/tidwall/gjson"
)

// Geocode resolves free text to the first match the geocoding service
// returns. The location is nil whenever the error is non-nil.
func (c *Client) Geocode(ctx context.Context, location string) (*models.GeocodedLocation, error) {
	if c.apiKey == "" {
		return nil, c.missingAPIKey(serviceGeocode)
	}

	params := url.Values{}
	params.Set("address", location)

	body, err := c.get(ctx, serviceGeocode, c.geocodeEndpoint, params)
	if err != nil {
		return nil, err
	}

	if status := gjson.GetBytes(body, "status").String(); status != statusOK {
		return nil, errorForStatus(serviceGeocode, status)
	}

	first := gjson.GetBytes(body, "results.0")
	if !first.Exists() {
		return nil, newError(ErrNotFound, serviceGeocode, statusOK, nil)
	}

	lat := first.Get("geometry.location.lat")
	lng := first.Get("geometry.location.lng")
	if !lat.Exists() || !lng.Exists() {
		return nil, newError(ErrUnavailable, serviceGeocode, statusOK, errors.New("result has no coordinates"))
	}

	return &models.GeocodedLocation{
		Lat:         lat.Float(),
		Lng:         lng.Float(),
		DisplayName: first.Get("formatted_address").String(),
	}, nil
}
