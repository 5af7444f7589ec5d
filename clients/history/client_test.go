package history

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/storefinder/api/handlers"
	"github.com/meghashyamc/storefinder/db/kvdb"
	"github.com/meghashyamc/storefinder/db/searchdb"
	"github.com/meghashyamc/storefinder/logger"
	"github.com/meghashyamc/storefinder/models"
	historyservice "github.com/meghashyamc/storefinder/services/history"
	"github.com/meghashyamc/storefinder/validation"
	"github.com/stretchr/testify/require"
)

var testResponse = models.StoreSearchResponse{
	Query:    models.StoreSearchQuery{Location: "Connaught Place, Delhi", Type: "cafes", MinRating: 4},
	Geocoded: &models.GeocodedLocation{Lat: 28.6315, Lng: 77.2167, DisplayName: "Connaught Place"},
	Stores: []models.Store{
		{ID: "p1", Name: "Blue Tokai", Address: "N Block", Rating: 4.5, Lat: 28.632, Lng: 77.218, Type: "cafes"},
	},
	Timestamp: "2026-10-14T09:30:00.000Z",
}

// newHistoryServer serves the real history routes backed by a temporary bbolt file.
func newHistoryServer(t *testing.T, assert *require.Assertions) *httptest.Server {
	gin.SetMode(gin.TestMode)
	log := logger.Discard()

	store, err := kvdb.New(log, filepath.Join(t.TempDir(), "history.db"), kvdb.HistoryBucket)
	assert.NoError(err)
	index, err := searchdb.New(log)
	assert.NoError(err)
	service, err := historyservice.New(log, store, index)
	assert.NoError(err)
	validator, err := validation.New(log)
	assert.NoError(err)

	router := gin.New()
	handlers.SetupHistory(router.Group("/api"), log, service, validator)

	server := httptest.NewServer(router)
	t.Cleanup(func() {
		server.Close()
		index.Close()
		store.Close()
	})
	return server
}

func TestCreateListDelete(t *testing.T) {
	assert := require.New(t)
	server := newHistoryServer(t, assert)
	client := New(logger.Discard(), server.URL+"/api", server.Client())
	ctx := context.Background()

	assert.Equal([]models.HistoryEntry{}, client.List(ctx))

	entry, err := client.Create(ctx, testResponse)
	assert.NoError(err)
	assert.NotEmpty(entry.ID)
	assert.Equal(testResponse, entry.Response())

	second := testResponse
	second.Query = models.StoreSearchQuery{Location: "Koramangala, Bangalore", Type: "gyms", MinRating: 3}
	second.Stores = nil
	secondEntry, err := client.Create(ctx, second)
	assert.NoError(err)
	assert.Equal([]models.Store{}, secondEntry.Stores)

	entries := client.List(ctx)
	assert.Len(entries, 2)
	assert.Equal(secondEntry.ID, entries[0].ID)
	assert.Equal(entry.ID, entries[1].ID)

	filtered := client.Filter(ctx, "bangalore")
	assert.Len(filtered, 1)
	assert.Equal(secondEntry.ID, filtered[0].ID)

	assert.NoError(client.DeleteOne(ctx, entry.ID))
	err = client.DeleteOne(ctx, entry.ID)
	assert.ErrorIs(err, ErrRequestFailed)
	var statusErr *StatusError
	assert.ErrorAs(err, &statusErr)
	assert.Equal(http.StatusNotFound, statusErr.StatusCode)

	assert.Len(client.List(ctx), 1)
}

func TestCreateRejectedRecord(t *testing.T) {
	assert := require.New(t)
	server := newHistoryServer(t, assert)
	client := New(logger.Discard(), server.URL+"/api", server.Client())

	invalid := testResponse
	invalid.Query.Location = "   "
	entry, err := client.Create(context.Background(), invalid)
	assert.Nil(entry)
	assert.ErrorIs(err, ErrRequestFailed)
}

func TestDeleteOneEmptyIDIsNoop(t *testing.T) {
	assert := require.New(t)
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := New(logger.Discard(), server.URL, server.Client())
	assert.NoError(client.DeleteOne(context.Background(), ""))
	assert.Zero(calls.Load())
}

func TestListDegradesToEmpty(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "ServerError",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "MalformedBody",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"not":"a list"`))
			},
		},
		{
			name: "NullBody",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`null`))
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			server := httptest.NewServer(testCase.handler)
			defer server.Close()

			client := New(logger.Discard(), server.URL, server.Client())
			entries := client.List(context.Background())
			assert.NotNil(entries)
			assert.Empty(entries)
		})
	}

	t.Run("Unreachable", func(t *testing.T) {
		assert := require.New(t)
		server := httptest.NewServer(http.NotFoundHandler())
		server.Close()

		client := New(logger.Discard(), server.URL, nil)
		entries := client.List(context.Background())
		assert.NotNil(entries)
		assert.Empty(entries)
	})
}

func TestDeleteAllTalliesFailures(t *testing.T) {
	assert := require.New(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/bad") {
			http.Error(w, "nope", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := New(logger.Discard(), server.URL, server.Client())
	entries := []models.HistoryEntry{{ID: "a"}, {ID: "bad"}, {ID: "b"}, {ID: ""}}

	tally := client.DeleteAll(context.Background(), entries)
	assert.False(tally.Complete())
	assert.ElementsMatch([]string{"a", "b"}, tally.Succeeded)
	assert.Equal([]string{"bad"}, tally.Failed)
}

func TestDeleteAllAgainstHistoryService(t *testing.T) {
	assert := require.New(t)
	server := newHistoryServer(t, assert)
	client := New(logger.Discard(), server.URL+"/api", server.Client())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := client.Create(ctx, testResponse)
		assert.NoError(err)
	}

	tally := client.DeleteAll(ctx, client.List(ctx))
	assert.True(tally.Complete())
	assert.Len(tally.Succeeded, 3)
	assert.Empty(client.List(ctx))
}
