package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/meghashyamc/storefinder/logger"
	"github.com/meghashyamc/storefinder/models"
)

const collectionPath = "/search-history"

var ErrRequestFailed = errors.New("history request failed")

// StatusError is returned when the history service answers with a non-2xx status.
type StatusError struct {
	Method     string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s returned status %d: %s", e.Method, collectionPath, e.StatusCode, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrRequestFailed
}

// Client talks to a search history collection.
type Client struct {
	logger     logger.Logger
	baseURL    string
	httpClient *http.Client
}

// New returns a client for the collection at baseURL + /search-history.
// httpClient defaults to http.DefaultClient.
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

// Create stores the given search response as a history record.
func (c *Client) Create(ctx context.Context, response models.StoreSearchResponse) (*models.HistoryEntry, error) {
	payload, err := json.Marshal(models.NewHistoryRecord(response))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal history record: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, c.baseURL+collectionPath, bytes.NewReader(payload))
	if err != nil {
		c.logger.Error("could not save search to history", "location", response.Query.Location, "err", err.Error())
		return nil, err
	}

	var entry models.HistoryEntry
	if err := json.Unmarshal(body, &entry); err != nil {
		c.logger.Error("could not decode created history entry", "err", err.Error())
		return nil, fmt.Errorf("failed to decode history entry: %w", err)
	}

	c.logger.Debug("saved search to history", "id", entry.ID)
	return &entry, nil
}

// List returns the stored history. Any failure yields an empty list.
func (c *Client) List(ctx context.Context) []models.HistoryEntry {
	return c.list(ctx, "")
}

// Filter returns the stored history entries matching text.
func (c *Client) Filter(ctx context.Context, text string) []models.HistoryEntry {
	return c.list(ctx, text)
}

func (c *Client) list(ctx context.Context, text string) []models.HistoryEntry {
	endpoint := c.baseURL + collectionPath
	if text != "" {
		endpoint += "?" + url.Values{"q": {text}}.Encode()
	}

	body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.logger.Error("could not fetch search history", "err", err.Error())
		return []models.HistoryEntry{}
	}

	var entries []models.HistoryEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		c.logger.Error("could not decode search history", "err", err.Error())
		return []models.HistoryEntry{}
	}
	if entries == nil {
		return []models.HistoryEntry{}
	}

	return entries
}

// DeleteOne removes a single entry. An empty id is ignored.
func (c *Client) DeleteOne(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}

	if _, err := c.do(ctx, http.MethodDelete, c.baseURL+collectionPath+"/"+url.PathEscape(id), nil); err != nil {
		c.logger.Error("could not delete history entry", "id", id, "err", err.Error())
		return err
	}

	return nil
}

// DeleteAll issues one delete per entry concurrently. Deletes are not atomic:
// the tally lists which ids were removed and which were not.
func (c *Client) DeleteAll(ctx context.Context, entries []models.HistoryEntry) models.DeleteTally {
	tally := models.DeleteTally{Succeeded: []string{}, Failed: []string{}}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, entry := range entries {
		if entry.ID == "" {
			continue
		}
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			err := c.DeleteOne(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				tally.Failed = append(tally.Failed, id)
				return
			}
			tally.Succeeded = append(tally.Succeeded, id)
		}(entry.ID)
	}
	wg.Wait()

	if !tally.Complete() {
		c.logger.Warn("history was only partially cleared", "deleted", len(tally.Succeeded), "failed", len(tally.Failed))
	}

	return tally
}

func (c *Client) do(ctx context.Context, method string, endpoint string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", ErrRequestFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Method: method, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	return respBody, nil
}
