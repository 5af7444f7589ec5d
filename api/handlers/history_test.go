package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/meghashyamc/storefinder/models"
	"github.com/stretchr/testify/require"
)

var validHistoryBody = map[string]any{
	"location":  "Connaught Place, Delhi",
	"type":      "cafes",
	"minRating": 4,
	"geocoded":  map[string]any{"lat": 28.6315, "lng": 77.2167, "displayName": "Connaught Place"},
	"stores":    []any{map[string]any{"id": "p1", "name": "Blue Tokai", "address": "N Block", "rating": 4.5, "lat": 28.632, "lng": 77.218, "type": "cafes"}},
	"timestamp": "2026-10-14T09:30:00.000Z",
}

var createHistoryTestCases = []testCase{
	{
		name:           "NoRequestBody",
		requestHeaders: defaultTestRequestHeaders,
		expectedStatus: http.StatusUnprocessableEntity,
	},
	{
		name:           "MissingLocation",
		requestHeaders: defaultTestRequestHeaders,
		requestBody:    map[string]any{"type": "cafes", "minRating": 4, "timestamp": "2026-10-14T09:30:00.000Z"},
		expectedStatus: http.StatusBadRequest,
		expectedResponse: map[string]any{
			"details": map[string]any{"location": []any{"location is required"}},
		},
	},
	{
		name:           "RatingOutOfRange",
		requestHeaders: defaultTestRequestHeaders,
		requestBody:    map[string]any{"location": "Delhi", "type": "cafes", "minRating": 9, "timestamp": "2026-10-14T09:30:00.000Z"},
		expectedStatus: http.StatusBadRequest,
	},
	{
		name:           "Success",
		requestHeaders: defaultTestRequestHeaders,
		requestBody:    validHistoryBody,
		expectedStatus: http.StatusCreated,
		expectedResponse: map[string]any{
			"location":  "Connaught Place, Delhi",
			"type":      "cafes",
			"minRating": float64(4),
			"timestamp": "2026-10-14T09:30:00.000Z",
		},
	},
}

func TestHandleCreateHistory(t *testing.T) {
	assert := require.New(t)
	server, cleanup := setupTestServer(t, assert, testAPIKey)
	defer cleanup()

	for _, testCase := range createHistoryTestCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			w := makeTestHTTPRequest(server.router, assert, http.MethodPost, "/api/search-history", testCase.requestHeaders, testCase.requestBody, testCase.queryParams)
			responseBytes := w.Body.Bytes()
			assert.Equal(testCase.expectedStatus, w.Code, fmt.Sprintf("response gotten was %s", string(responseBytes)))

			if testCase.expectedResponse != nil {
				var responseMap map[string]any
				assert.NoError(json.Unmarshal(responseBytes, &responseMap))
				assertSubset(assert, testCase.expectedResponse, responseMap)
			}
			if testCase.expectedStatus == http.StatusCreated {
				var entry models.HistoryEntry
				assert.NoError(json.Unmarshal(responseBytes, &entry))
				assert.NotEmpty(entry.ID)
			}
		})
	}
}

func TestHandleListAndDeleteHistory(t *testing.T) {
	assert := require.New(t)
	server, cleanup := setupTestServer(t, assert, testAPIKey)
	defer cleanup()

	w := makeTestHTTPRequest(server.router, assert, http.MethodGet, "/api/search-history", nil, nil, nil)
	assert.Equal(http.StatusOK, w.Code)
	assert.JSONEq(`[]`, w.Body.String())

	ids := []string{}
	for _, location := range []string{"Connaught Place, Delhi", "Koramangala, Bangalore"} {
		body := map[string]any{"location": location, "type": "cafes", "minRating": 3, "timestamp": "2026-10-14T09:30:00.000Z"}
		w := makeTestHTTPRequest(server.router, assert, http.MethodPost, "/api/search-history", defaultTestRequestHeaders, body, nil)
		assert.Equal(http.StatusCreated, w.Code, w.Body.String())
		var entry models.HistoryEntry
		assert.NoError(json.Unmarshal(w.Body.Bytes(), &entry))
		ids = append(ids, entry.ID)
	}

	var entries []models.HistoryEntry
	w = makeTestHTTPRequest(server.router, assert, http.MethodGet, "/api/search-history", nil, nil, nil)
	assert.Equal(http.StatusOK, w.Code)
	assert.NoError(json.Unmarshal(w.Body.Bytes(), &entries))
	assert.Len(entries, 2)
	assert.Equal(ids[1], entries[0].ID)
	assert.Equal([]models.Store{}, entries[0].Stores)

	w = makeTestHTTPRequest(server.router, assert, http.MethodGet, "/api/search-history", nil, nil, map[string]string{"q": "bangalore"})
	assert.Equal(http.StatusOK, w.Code)
	assert.NoError(json.Unmarshal(w.Body.Bytes(), &entries))
	assert.Len(entries, 1)
	assert.Equal(ids[1], entries[0].ID)

	w = makeTestHTTPRequest(server.router, assert, http.MethodDelete, "/api/search-history/"+ids[0], nil, nil, nil)
	assert.Equal(http.StatusNoContent, w.Code)

	w = makeTestHTTPRequest(server.router, assert, http.MethodDelete, "/api/search-history/"+ids[0], nil, nil, nil)
	assert.Equal(http.StatusNotFound, w.Code)

	w = makeTestHTTPRequest(server.router, assert, http.MethodGet, "/api/search-history", nil, nil, nil)
	assert.NoError(json.Unmarshal(w.Body.Bytes(), &entries))
	assert.Len(entries, 1)
	assert.Equal(ids[1], entries[0].ID)
}
