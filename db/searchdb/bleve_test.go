package searchdb

import (
	"log/slog"
	"os"
	"testing"

	"github.com/meghashyamc/storefinder/logger"
	"github.com/stretchr/testify/require"
)

func newTestLogger() logger.Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(handler)
}

var testDocuments = []Document{
	{ID: "1", Location: "Connaught Place, Delhi", Type: "cafes"},
	{ID: "2", Location: "Koramangala, Bangalore", Type: "restaurants"},
	{ID: "3", Location: "Hauz Khas, Delhi", Type: "retail"},
}

var searchTestCases = []struct {
	name        string
	query       string
	expectedIDs []string
}{
	{name: "MatchesCity", query: "delhi", expectedIDs: []string{"1", "3"}},
	{name: "CaseInsensitive", query: "KORAMANGALA", expectedIDs: []string{"2"}},
	{name: "PrefixOfLocation", query: "conn", expectedIDs: []string{"1"}},
	{name: "MatchesType", query: "restaurants", expectedIDs: []string{"2"}},
	{name: "EmptyMatchesAll", query: "  ", expectedIDs: []string{"1", "2", "3"}},
	{name: "NoMatch", query: "mumbai", expectedIDs: []string{}},
}

func TestSearch(t *testing.T) {
	assert := require.New(t)
	db, err := New(newTestLogger())
	assert.NoError(err)
	defer db.Close()

	assert.NoError(db.Index(testDocuments))
	count, err := db.DocCount()
	assert.NoError(err)
	assert.Equal(uint64(len(testDocuments)), count)

	for _, testCase := range searchTestCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			results, err := db.Search(testCase.query, 10)
			assert.NoError(err)

			ids := make([]string, 0, len(results))
			for _, result := range results {
				ids = append(ids, result.ID)
			}
			assert.ElementsMatch(testCase.expectedIDs, ids)
		})
	}
}

func TestDelete(t *testing.T) {
	assert := require.New(t)
	db, err := New(newTestLogger())
	assert.NoError(err)
	defer db.Close()

	assert.NoError(db.Index(testDocuments))
	assert.NoError(db.Delete([]string{"1", "missing"}))

	results, err := db.Search("delhi", 10)
	assert.NoError(err)
	assert.Len(results, 1)
	assert.Equal("3", results[0].ID)
}
