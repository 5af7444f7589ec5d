package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/meghashyamc/storefinder/db/kvdb"
	"github.com/meghashyamc/storefinder/db/searchdb"
	"github.com/meghashyamc/storefinder/logger"
	"github.com/meghashyamc/storefinder/models"
)

// ErrNotFound is returned when deleting an id the collection does not hold.
var ErrNotFound = kvdb.ErrNotFound

// Service owns the search history collection. Entries live in the key-value
// store under time-ordered ids; the search index only mirrors their text.
type Service struct {
	logger logger.Logger
	store  kvdb.DB
	index  searchdb.DB
	newID  func() (uuid.UUID, error)
}

func New(logger logger.Logger, store kvdb.DB, index searchdb.DB) (*Service, error) {
	service := &Service{
		logger: logger,
		store:  store,
		index:  index,
		newID:  uuid.NewV7,
	}
	if err := service.reindex(); err != nil {
		return nil, err
	}
	return service, nil
}

func (s *Service) Create(record models.HistoryRecord) (*models.HistoryEntry, error) {
	id, err := s.newID()
	if err != nil {
		s.logger.Error("failed to generate history entry id", "err", err.Error())
		return nil, fmt.Errorf("failed to generate history entry id: %w", err)
	}

	if record.Stores == nil {
		record.Stores = []models.Store{}
	}
	entry := &models.HistoryEntry{ID: id.String(), HistoryRecord: record}

	data, err := json.Marshal(entry)
	if err != nil {
		s.logger.Error("failed to marshal history entry", "id", entry.ID, "err", err.Error())
		return nil, fmt.Errorf("failed to marshal history entry: %w", err)
	}

	if err := s.store.Set(entry.ID, string(data)); err != nil {
		return nil, fmt.Errorf("failed to save history entry: %w", err)
	}

	if err := s.index.Index([]searchdb.Document{toDocument(*entry)}); err != nil {
		s.logger.Warn("failed to index history entry", "id", entry.ID, "err", err.Error())
	}

	s.logger.Info("saved search history entry", "id", entry.ID, "location", entry.Location, "stores", len(entry.Stores))
	return entry, nil
}

// List returns entries newest first. A non-blank filter keeps only entries
// whose location or type matches it.
func (s *Service) List(filter string) ([]models.HistoryEntry, error) {
	entries, err := s.entries()
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(filter) == "" {
		return entries, nil
	}

	results, err := s.index.Search(filter, max(len(entries), 1))
	if err != nil {
		return nil, fmt.Errorf("failed to filter search history: %w", err)
	}

	matched := make(map[string]bool, len(results))
	for _, result := range results {
		matched[result.ID] = true
	}

	filtered := []models.HistoryEntry{}
	for _, entry := range entries {
		if matched[entry.ID] {
			filtered = append(filtered, entry)
		}
	}
	return filtered, nil
}

func (s *Service) Delete(id string) error {
	if err := s.store.Delete(id); err != nil {
		if !errors.Is(err, kvdb.ErrNotFound) {
			s.logger.Error("failed to delete history entry", "id", id, "err", err.Error())
		}
		return fmt.Errorf("failed to delete history entry %s: %w", id, err)
	}

	if err := s.index.Delete([]string{id}); err != nil {
		s.logger.Warn("failed to remove history entry from index", "id", id, "err", err.Error())
	}

	s.logger.Info("deleted search history entry", "id", id)
	return nil
}

func (s *Service) entries() ([]models.HistoryEntry, error) {
	stored, err := s.store.Entries()
	if err != nil {
		s.logger.Error("failed to read search history", "err", err.Error())
		return nil, fmt.Errorf("failed to read search history: %w", err)
	}

	entries := make([]models.HistoryEntry, 0, len(stored))
	for _, kv := range stored {
		var entry models.HistoryEntry
		if err := json.Unmarshal([]byte(kv.Value), &entry); err != nil {
			s.logger.Error("skipping unreadable history entry", "id", kv.Key, "err", err.Error())
			continue
		}
		entry.ID = kv.Key
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *Service) reindex() error {
	entries, err := s.entries()
	if err != nil {
		return err
	}

	documents := make([]searchdb.Document, 0, len(entries))
	for _, entry := range entries {
		documents = append(documents, toDocument(entry))
	}
	if err := s.index.Index(documents); err != nil {
		s.logger.Error("failed to rebuild search history index", "err", err.Error())
		return fmt.Errorf("failed to rebuild search history index: %w", err)
	}

	s.logger.Info("rebuilt search history index", "entries", len(documents))
	return nil
}

func toDocument(entry models.HistoryEntry) searchdb.Document {
	return searchdb.Document{ID: entry.ID, Location: entry.Location, Type: entry.Type}
}
