package googlemaps

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/meghashyamc/storefinder/logger"
	"github.com/tidwall/gjson"
)

const (
	serviceGeocode = "geocode"
	serviceNearby  = "nearbysearch"

	statusOK = "OK"
)

type Options struct {
	APIKey          string
	GeocodeEndpoint string
	PlacesEndpoint  string
	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// Client talks to the Google geocoding and nearby-search JSON endpoints.
type Client struct {
	logger          logger.Logger
	apiKey          string
	geocodeEndpoint string
	placesEndpoint  string
	httpClient      *http.Client
}

func New(logger logger.Logger, opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		logger:          logger,
		apiKey:          opts.APIKey,
		geocodeEndpoint: opts.GeocodeEndpoint,
		placesEndpoint:  opts.PlacesEndpoint,
		httpClient:      httpClient,
	}
}

func (c *Client) missingAPIKey(service string) error {
	c.logger.Warn("google maps api key not set, skipping request", "service", service)
	return newError(ErrUnauthorized, service, "", errors.New("api key not configured"))
}

// get performs one GET and returns the body once it is known to be JSON.
func (c *Client) get(ctx context.Context, service string, endpoint string, params url.Values) ([]byte, error) {
	params.Set("key", c.apiKey)
	fullURL := endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, newError(ErrUnavailable, service, "", fmt.Errorf("failed to build request: %w", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newError(ErrUnavailable, service, "", fmt.Errorf("failed to call google maps api: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(ErrUnavailable, service, "", fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newError(ErrUnavailable, service, strconv.Itoa(resp.StatusCode), errors.New(string(body)))
	}

	if !gjson.ValidBytes(body) {
		return nil, newError(ErrUnavailable, service, "", errors.New("response is not valid json"))
	}

	return body, nil
}
