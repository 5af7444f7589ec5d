package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/storefinder/clients/googlemaps"
	"github.com/meghashyamc/storefinder/config"
	"github.com/meghashyamc/storefinder/db/kvdb"
	"github.com/meghashyamc/storefinder/db/searchdb"
	"github.com/meghashyamc/storefinder/logger"
	"github.com/meghashyamc/storefinder/services/history"
	"github.com/meghashyamc/storefinder/services/search"
	"github.com/meghashyamc/storefinder/validation"
)

const shutdownTimeout = 10 * time.Second

type server struct {
	cfg            *config.Config
	router         *gin.Engine
	httpServer     *http.Server
	kvdb           kvdb.DB
	searchdb       searchdb.DB
	searchService  *search.Service
	historyService *history.Service
	validator      *validation.Validator
	logger         logger.Logger
}

// Run serves the API until ctx is done or an interrupt arrives.
func Run(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)

	defer cancel()

	s := &server{
		cfg:    cfg,
		logger: logger.NewWithLevel(cfg.GetLogLevel()),
	}
	if err := s.setupDependencies(); err != nil {
		return err
	}
	s.setupRouter()
	s.setupHTTPServer()

	return s.serve(ctx)
}

func (s *server) setupDependencies() error {
	var err error
	s.kvdb, err = kvdb.New(s.logger, s.cfg.GetHistoryDBPath(), kvdb.HistoryBucket)
	if err != nil {
		s.logger.Error("error creating kvDB", "err", err.Error())
		return err
	}
	s.searchdb, err = searchdb.New(s.logger)
	if err != nil {
		s.logger.Error("error creating searchDB", "err", err.Error())
		return err
	}
	s.historyService, err = history.New(s.logger, s.kvdb, s.searchdb)
	if err != nil {
		s.logger.Error("error creating history service", "err", err.Error())
		return err
	}
	s.validator, err = validation.New(s.logger)
	if err != nil {
		s.logger.Error("error creating validator", "err", err.Error())
		return err
	}

	if s.cfg.GetGoogleAPIKey() == "" {
		s.logger.Warn("google maps api key not configured, searches will return no results")
	}
	placesClient := googlemaps.New(s.logger, googlemaps.Options{
		APIKey:          s.cfg.GetGoogleAPIKey(),
		GeocodeEndpoint: s.cfg.GetGeocodeEndpoint(),
		PlacesEndpoint:  s.cfg.GetPlacesEndpoint(),
		HTTPClient:      &http.Client{Timeout: s.cfg.GetUpstreamTimeout()},
	})
	s.searchService = search.New(s.logger, placesClient, placesClient)

	return nil

}

func (s *server) setupRouter() {
	router := newRouter()

	router.Use(loggingMiddleware(s.logger))

	setupRoutes(router, s.logger, s.searchService, s.historyService, s.validator)

	s.router = router
}

func (s *server) setupHTTPServer() {

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%s", s.cfg.GetPort()),
		Handler: s.router.Handler(),
	}
}

func (s *server) serve(ctx context.Context) error {
	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		s.closeStores()
		if err != nil {
			s.logger.Error("http server stopped", "err", err.Error())
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("starting to shut down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := s.httpServer.Shutdown(shutdownCtx)
	s.closeStores()
	if err != nil {
		s.logger.Error("error shutting down http server", "err", err)
		return err
	}
	s.logger.Info("shut down http server successfully")
	return nil
}

func (s *server) closeStores() {
	if err := s.searchdb.Close(); err != nil {
		s.logger.Error("error closing searchDB", "err", err.Error())
	}
	if err := s.kvdb.Close(); err != nil {
		s.logger.Error("error closing kvDB", "err", err.Error())
	}
}
