// Common test helpers
package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/storefinder/clients/googlemaps"
	"github.com/meghashyamc/storefinder/db/kvdb"
	"github.com/meghashyamc/storefinder/db/searchdb"
	"github.com/meghashyamc/storefinder/logger"
	"github.com/meghashyamc/storefinder/services/history"
	"github.com/meghashyamc/storefinder/services/search"
	"github.com/meghashyamc/storefinder/validation"
	"github.com/stretchr/testify/require"
)

var defaultTestRequestHeaders = map[string]string{"Content-Type": "application/json"}

const upstreamGeocodeResponse = `{
	"status": "OK",
	"results": [{"formatted_address": "Connaught Place, New Delhi, Delhi 110001, India", "geometry": {"location": {"lat": 28.6315, "lng": 77.2167}}}]
}`

const upstreamNearbyResponse = `{
	"status": "OK",
	"results": [
		{"place_id": "p1", "name": "Blue Tokai", "vicinity": "N Block", "rating": 4.5, "geometry": {"location": {"lat": 28.632, "lng": 77.218}}},
		{"place_id": "p2", "name": "Corner Cafe", "vicinity": "M Block", "rating": 3.2, "geometry": {"location": {"lat": 28.633, "lng": 77.219}}},
		{"place_id": "p3", "name": "Perch", "vicinity": "Khan Market", "rating": 4.8, "geometry": {"location": {"lat": 28.600, "lng": 77.227}}}
	]
}`

type testCase struct {
	name             string
	requestHeaders   map[string]string
	requestBody      map[string]any
	queryParams      map[string]string
	expectedStatus   int
	expectedResponse map[string]any
}

type testServer struct {
	router *gin.Engine
	// upstreamCalls counts requests made to the fake google maps service.
	upstreamCalls atomic.Int64
}

func newTestLogger() logger.Logger {

	opts := &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}

// setupTestServer wires both route groups against a fake google maps service.
// An empty apiKey leaves the places client without a credential.
func setupTestServer(t *testing.T, assert *require.Assertions, apiKey string) (*testServer, func()) {

	server := &testServer{}
	testLogger := newTestLogger()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		server.upstreamCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/geocode/json":
			if r.URL.Query().Get("address") == "Atlantis" {
				w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
				return
			}
			w.Write([]byte(upstreamGeocodeResponse))
		case "/place/nearbysearch/json":
			w.Write([]byte(upstreamNearbyResponse))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	placesClient := googlemaps.New(testLogger, googlemaps.Options{
		APIKey:          apiKey,
		GeocodeEndpoint: upstream.URL + "/geocode/json",
		PlacesEndpoint:  upstream.URL + "/place/nearbysearch/json",
		HTTPClient:      upstream.Client(),
	})

	kvDB, err := kvdb.New(testLogger, filepath.Join(t.TempDir(), "history.db"), kvdb.HistoryBucket)
	assert.NoError(err, "could not create kv database")
	searchDB, err := searchdb.New(testLogger)
	assert.NoError(err, "could not create search database")
	historyService, err := history.New(testLogger, kvDB, searchDB)
	assert.NoError(err, "could not create history service")

	validator, err := validation.New(testLogger)
	assert.NoError(err, "could not create validator")
	gin.SetMode(gin.TestMode)
	router := gin.New()

	api := router.Group("/api")
	SetupStores(api, testLogger, search.New(testLogger, placesClient, placesClient), validator)
	SetupHistory(api, testLogger, historyService, validator)
	server.router = router

	cleanup := func() {
		upstream.Close()
		assert.NoError(searchDB.Close(), "could not close search database")
		assert.NoError(kvDB.Close(), "could not close kv database")
	}

	return server, cleanup
}

func makeTestHTTPRequest(router *gin.Engine, assert *require.Assertions, method string, endpoint string, headers map[string]string, requestBodyMap map[string]interface{}, queryParams map[string]string) *httptest.ResponseRecorder {

	var err error
	w := httptest.NewRecorder()

	if len(queryParams) > 0 {
		values := url.Values{}
		for key, value := range queryParams {
			values.Set(key, value)
		}
		endpoint = endpoint + "?" + values.Encode()
	}
	var jsonBody []byte
	var req *http.Request
	if requestBodyMap != nil {
		jsonBody, err = json.Marshal(requestBodyMap)
		assert.NoError(err)
	}

	slog.Info("Making test request", "method", method, "endpoint", endpoint, "headers", headers, "body", string(jsonBody))

	if len(jsonBody) > 0 {
		req, err = http.NewRequest(method, endpoint, bytes.NewBuffer(jsonBody))
	} else {
		req, err = http.NewRequest(method, endpoint, nil)
	}
	assert.NoError(err)

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	router.ServeHTTP(w, req)

	return w
}

// assertSubset checks that every key in expected is present in actual with
// an equal value, recursing into nested maps.
func assertSubset(assert *require.Assertions, expected map[string]any, actual map[string]any) {
	for key, expectedValue := range expected {
		actualValue, exists := actual[key]
		assert.True(exists, "expected field %s in response", key)

		expectedMap, isMap := expectedValue.(map[string]any)
		if isMap {
			actualMap, ok := actualValue.(map[string]any)
			assert.True(ok, "field %s should be an object", key)
			assertSubset(assert, expectedMap, actualMap)
			continue
		}
		assert.Equal(expectedValue, actualValue, "field %s mismatch", key)
	}
}
