package controller

import (
	"context"
	"sync"

	"github.com/meghashyamc/storefinder/logger"
	"github.com/meghashyamc/storefinder/models"
)

const (
	DefaultType      = "all"
	DefaultMinRating = 3
)

type Searcher interface {
	Search(ctx context.Context, query models.StoreSearchQuery) (*models.StoreSearchResponse, error)
}

type HistoryWriter interface {
	Create(ctx context.Context, response models.StoreSearchResponse) (*models.HistoryEntry, error)
}

// pendingSearch marks the submission whose result should be saved to history.
type pendingSearch struct {
	query      models.StoreSearchQuery
	generation uint64
}

// Controller tracks submitted searches, shows the newest result and saves
// exactly one history entry per submission that is still current when its
// result arrives.
type Controller struct {
	logger   logger.Logger
	searcher Searcher
	history  HistoryWriter
	// onSaved, when set, is called after a history entry is created.
	onSaved func(models.HistoryEntry)

	mu                  sync.Mutex
	form                models.StoreSearchQuery
	active              *models.StoreSearchQuery
	pending             *pendingSearch
	generation          uint64
	displayedGeneration uint64
	displayed           *models.StoreSearchResponse

	wg sync.WaitGroup
}

type Option func(*Controller)

// WithOnSaved registers a callback for newly created history entries.
func WithOnSaved(fn func(models.HistoryEntry)) Option {
	return func(c *Controller) {
		c.onSaved = fn
	}
}

func New(logger logger.Logger, searcher Searcher, history HistoryWriter, opts ...Option) *Controller {
	c := &Controller{
		logger:   logger,
		searcher: searcher,
		history:  history,
		form:     models.StoreSearchQuery{Type: DefaultType, MinRating: DefaultMinRating},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Form() models.StoreSearchQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

func (c *Controller) SetForm(form models.StoreSearchQuery) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = form
}

// Active returns the most recently submitted query, or nil before the first submission.
func (c *Controller) Active() *models.StoreSearchQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return nil
	}
	active := *c.active
	return &active
}

// Pending reports the query still waiting to be saved to history.
func (c *Controller) Pending() (models.StoreSearchQuery, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return models.StoreSearchQuery{}, false
	}
	return c.pending.query, true
}

// Displayed returns the newest result received so far.
func (c *Controller) Displayed() *models.StoreSearchResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.displayed
}

// SubmitForm submits the current form values.
func (c *Controller) SubmitForm(ctx context.Context) uint64 {
	return c.Submit(ctx, c.Form())
}

// Submit starts a search for query and returns its generation. Earlier
// searches keep running; their results are only shown if nothing newer has
// arrived and are never saved once superseded.
func (c *Controller) Submit(ctx context.Context, query models.StoreSearchQuery) uint64 {
	c.mu.Lock()
	c.generation++
	generation := c.generation
	c.form = query
	active := query
	c.active = &active
	c.pending = &pendingSearch{query: query, generation: generation}
	c.mu.Unlock()

	c.logger.Debug("submitting search", "generation", generation, "location", query.Location, "type", query.Type)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		response, err := c.searcher.Search(ctx, query)
		if err != nil {
			c.logger.Error("store search failed", "generation", generation, "err", err.Error())
			return
		}
		c.receive(ctx, generation, response)
	}()

	return generation
}

func (c *Controller) receive(ctx context.Context, generation uint64, response *models.StoreSearchResponse) {
	c.mu.Lock()
	if generation > c.displayedGeneration {
		c.displayedGeneration = generation
		c.displayed = response
	} else {
		c.logger.Debug("dropping stale search result", "generation", generation, "displayed", c.displayedGeneration)
	}

	save := c.pending != nil && c.pending.generation == generation && c.pending.query.Equal(response.Query)
	if save {
		c.pending = nil
	}
	c.mu.Unlock()

	if !save {
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		entry, err := c.history.Create(context.WithoutCancel(ctx), *response)
		if err != nil {
			c.logger.Warn("search was not saved to history", "generation", generation, "err", err.Error())
			return
		}
		if c.onSaved != nil {
			c.onSaved(*entry)
		}
	}()
}

// Wait blocks until every started search and history save has finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}
