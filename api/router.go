package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/storefinder/api/handlers"
	"github.com/meghashyamc/storefinder/logger"
	"github.com/meghashyamc/storefinder/services/history"
	"github.com/meghashyamc/storefinder/services/search"
	"github.com/meghashyamc/storefinder/validation"
)

func setupRoutes(router *gin.Engine, logger logger.Logger, searchService *search.Service, historyService *history.Service, validator *validation.Validator) {
	router.GET("/health", health())

	api := router.Group("/api")
	handlers.SetupStores(api, logger, searchService, validator)
	handlers.SetupHistory(api, logger, historyService, validator)

}

func health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	}
}

func newRouter() *gin.Engine {
	router := gin.New()
	router.UseRawPath = true
	router.Use(_CORSMiddleware())
	router.Use(gin.Recovery())

	return router
}
