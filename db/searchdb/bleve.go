package searchdb

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/meghashyamc/storefinder/logger"
)

const indexingBatchSize = 100

const (
	indexFieldLocation = "location"
	indexFieldType     = "type"
)

// BleveDB is an in-memory index. It holds no data of its own and is rebuilt
// from the history store at start-up.
type BleveDB struct {
	logger logger.Logger
	index  bleve.Index
}

func New(logger logger.Logger) (*BleveDB, error) {
	index, err := bleve.NewMemOnly(createIndexMapping())
	if err != nil {
		logger.Error("could not create index", "err", err.Error())
		return nil, fmt.Errorf("could not create index: %w", err)
	}
	return &BleveDB{logger: logger, index: index}, nil
}

func (b *BleveDB) Index(documents []Document) error {

	batch := b.index.NewBatch()

	for i, doc := range documents {

		if err := batch.Index(doc.ID, doc); err != nil {
			b.logger.Error("could not index document", "id", doc.ID, "err", err.Error())
			return err
		}

		if (i+1)%indexingBatchSize == 0 {
			if err := b.index.Batch(batch); err != nil {
				return err
			}
			batch = b.index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := b.index.Batch(batch); err != nil {
			b.logger.Error("could not index document", "err", err.Error())
			return err
		}
	}

	return nil
}

func createIndexMapping() mapping.IndexMapping {

	indexMapping := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	locationFieldMapping := bleve.NewTextFieldMapping()
	locationFieldMapping.Analyzer = standard.Name
	locationFieldMapping.Store = false
	docMapping.AddFieldMappingsAt(indexFieldLocation, locationFieldMapping)

	typeFieldMapping := bleve.NewTextFieldMapping()
	typeFieldMapping.Analyzer = standard.Name
	typeFieldMapping.Store = false
	docMapping.AddFieldMappingsAt(indexFieldType, typeFieldMapping)

	indexMapping.DefaultMapping = docMapping

	return indexMapping
}

// Search returns matching document ids ordered by score.
func (b *BleveDB) Search(queryString string, limit int) ([]Result, error) {

	searchRequest := bleve.NewSearchRequestOptions(b.buildSearchQuery(queryString), limit, 0, false)

	searchResult, err := b.index.Search(searchRequest)
	if err != nil {
		b.logger.Error("search failed", "err", err.Error())
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := make([]Result, len(searchResult.Hits))
	for i, hit := range searchResult.Hits {
		results[i] = Result{ID: hit.ID, Score: hit.Score}
	}

	return results, nil
}

func (b *BleveDB) buildSearchQuery(queryString string) query.Query {

	const (
		boostForLocation     = 3.0
		boostForType         = 1.0
		boostForPartialMatch = 1.5
	)

	queryString = strings.ToLower(strings.TrimSpace(queryString))

	if queryString == "" {
		return bleve.NewMatchAllQuery()
	}

	disjunctQuery := bleve.NewDisjunctionQuery()

	locationQuery := bleve.NewMatchQuery(queryString)
	locationQuery.SetField(indexFieldLocation)
	locationQuery.SetBoost(boostForLocation)
	disjunctQuery.AddQuery(locationQuery)

	typeQuery := bleve.NewMatchQuery(queryString)
	typeQuery.SetField(indexFieldType)
	typeQuery.SetBoost(boostForType)
	disjunctQuery.AddQuery(typeQuery)

	if len(queryString) > 2 {
		prefixQuery := bleve.NewPrefixQuery(queryString)
		prefixQuery.SetField(indexFieldLocation)
		prefixQuery.SetBoost(boostForPartialMatch)
		disjunctQuery.AddQuery(prefixQuery)
	}

	return disjunctQuery
}

func (b *BleveDB) Delete(documentIDs []string) error {
	batch := b.index.NewBatch()

	for i, docID := range documentIDs {
		batch.Delete(docID)

		if (i+1)%indexingBatchSize == 0 {
			if err := b.index.Batch(batch); err != nil {
				return err
			}
			batch = b.index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := b.index.Batch(batch); err != nil {
			b.logger.Error("could not delete documents", "err", err.Error())
			return err
		}
	}

	return nil
}

func (b *BleveDB) DocCount() (uint64, error) {
	return b.index.DocCount()
}

func (b *BleveDB) Close() error {

	if b.index != nil {
		if err := b.index.Close(); err != nil {
			b.logger.Error("could not close search index", "err", err.Error())
			return err
		}
	}
	return nil
}
