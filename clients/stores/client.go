package stores

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/meghashyamc/storefinder/logger"
	"github.com/meghashyamc/storefinder/models"
)

const storesPath = "/stores"

var ErrInvalidQuery = errors.New("invalid query")

// QueryError carries the field details of a rejected search.
type QueryError struct {
	Details map[string][]string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %v", ErrInvalidQuery, e.Details)
}

func (e *QueryError) Is(target error) bool {
	return target == ErrInvalidQuery
}

// Client calls the store search API.
type Client struct {
	logger     logger.Logger
	baseURL    string
	httpClient *http.Client
}

func New(logger logger.Logger, baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		logger:     logger,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Search runs one store search. A rejected query is reported as a *QueryError.
func (c *Client) Search(ctx context.Context, query models.StoreSearchQuery) (*models.StoreSearchResponse, error) {
	params := url.Values{}
	params.Set("location", query.Location)
	params.Set("type", query.Type)
	params.Set("minRating", strconv.FormatFloat(query.MinRating, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+storesPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call stores api: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read stores response: %w", err)
	}

	if resp.StatusCode == http.StatusBadRequest {
		var rejection struct {
			Details map[string][]string `json:"details"`
		}
		if err := json.Unmarshal(body, &rejection); err != nil {
			return nil, fmt.Errorf("failed to decode rejection: %w", err)
		}
		return nil, &QueryError{Details: rejection.Details}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stores api returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var response models.StoreSearchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to decode stores response: %w", err)
	}
	if response.Stores == nil {
		response.Stores = []models.Store{}
	}

	c.logger.Debug("received store search response", "location", query.Location, "stores", len(response.Stores))
	return &response, nil
}
