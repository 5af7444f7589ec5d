package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meghashyamc/storefinder/clients/history"
	"github.com/meghashyamc/storefinder/clients/stores"
	"github.com/meghashyamc/storefinder/config"
	"github.com/meghashyamc/storefinder/logger"
	"github.com/meghashyamc/storefinder/models"
)

// StoreSearcher runs store searches against the API.
type StoreSearcher interface {
	Search(ctx context.Context, query models.StoreSearchQuery) (*models.StoreSearchResponse, error)
}

// HistoryStore reads and writes the search history collection.
type HistoryStore interface {
	Create(ctx context.Context, response models.StoreSearchResponse) (*models.HistoryEntry, error)
	List(ctx context.Context) []models.HistoryEntry
	DeleteOne(ctx context.Context, id string) error
	DeleteAll(ctx context.Context, entries []models.HistoryEntry) models.DeleteTally
}

// Services set through Configure. Commands build HTTP clients from the
// --server flag for any that are left nil.
var (
	cfg          *config.Config
	log          logger.Logger = logger.Discard()
	storeService StoreSearcher
	historyStore HistoryStore
)

var serverURL string

var rootCmd = &cobra.Command{
	Use:   "storefinder",
	Short: "Find nearby stores and manage search history",
	Long: `storefinder searches for stores around a location through the store finder API
and keeps a history of completed searches.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupClients,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "store finder server URL, e.g. http://localhost:8080")
}

// Configure injects the config, logger and, optionally, prebuilt services.
func Configure(c *config.Config, l logger.Logger, searcher StoreSearcher, store HistoryStore) {
	cfg = c
	if l != nil {
		log = l
	}
	storeService = searcher
	historyStore = store
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func setupClients(cmd *cobra.Command, args []string) error {
	storesURL, historyURL := baseURLs()
	if storeService == nil {
		storeService = stores.New(log, storesURL, nil)
	}
	if historyStore == nil {
		historyStore = history.New(log, historyURL, nil)
	}
	return nil
}

func baseURLs() (string, string) {
	if serverURL != "" {
		apiURL := strings.TrimRight(serverURL, "/") + "/api"
		return apiURL, apiURL
	}
	if cfg != nil {
		return cfg.GetStoresBaseURL(), cfg.GetHistoryBaseURL()
	}
	return config.DefaultStoresBaseURL, config.DefaultStoresBaseURL
}
