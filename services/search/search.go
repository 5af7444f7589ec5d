package search

import (
	"context"
	"errors"
	"time"

	"github.com/meghashyamc/storefinder/clients/googlemaps"
	"github.com/meghashyamc/storefinder/logger"
	"github.com/meghashyamc/storefinder/models"
)

// Geocoder resolves free-text locations.
type Geocoder interface {
	Geocode(ctx context.Context, location string) (*models.GeocodedLocation, error)
}

// PlacesFinder lists stores near a point.
type PlacesFinder interface {
	Nearby(ctx context.Context, center models.LatLng, tag string, minRating float64) ([]models.Store, error)
}

type Service struct {
	logger   logger.Logger
	geocoder Geocoder
	places   PlacesFinder
	now      func() time.Time
}

func New(logger logger.Logger, geocoder Geocoder, places PlacesFinder) *Service {
	return &Service{
		logger:   logger,
		geocoder: geocoder,
		places:   places,
		now:      time.Now,
	}
}

// Search runs geocode, nearby search and assembly for an already validated
// query. Upstream failures never fail the search; they degrade to a null
// location or an empty store list.
func (s *Service) Search(ctx context.Context, query models.StoreSearchQuery) *models.StoreSearchResponse {
	response := &models.StoreSearchResponse{
		Query:  query,
		Stores: []models.Store{},
	}

	geocoded, err := s.geocoder.Geocode(ctx, query.Location)
	if err != nil {
		s.logUpstreamFailure("geocoding failed", query, err)
		geocoded = nil
	}

	if geocoded != nil {
		response.Geocoded = geocoded
		stores, err := s.places.Nearby(ctx, geocoded.Center(), query.Type, query.MinRating)
		if err != nil {
			s.logUpstreamFailure("nearby search failed", query, err)
		} else if stores != nil {
			response.Stores = stores
		}
	}

	response.Timestamp = models.FormatTimestamp(s.now())
	s.logger.Info("search completed", "location", query.Location, "type", query.Type, "min_rating", query.MinRating, "geocoded", geocoded != nil, "stores", len(response.Stores))

	return response
}

func (s *Service) logUpstreamFailure(msg string, query models.StoreSearchQuery, err error) {
	kind := "unknown"
	switch {
	case errors.Is(err, googlemaps.ErrNotFound):
		kind = "not_found"
	case errors.Is(err, googlemaps.ErrUnauthorized):
		kind = "unauthorized"
	case errors.Is(err, googlemaps.ErrUnavailable):
		kind = "unavailable"
	}
	s.logger.Warn(msg, "location", query.Location, "kind", kind, "err", err.Error())
}
