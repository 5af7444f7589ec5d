package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/storefinder/logger"
	"github.com/meghashyamc/storefinder/models"
	"github.com/meghashyamc/storefinder/services/history"
	"github.com/meghashyamc/storefinder/validation"
)

type HistoryListRequest struct {
	Query string `form:"q"`
}

func SetupHistory(router gin.IRouter, logger logger.Logger, service *history.Service, validator *validation.Validator) {
	router.POST("/search-history", handleCreateHistory(service, logger, validator))
	router.GET("/search-history", handleListHistory(service, logger))
	router.DELETE("/search-history/:id", handleDeleteHistory(service, logger))

}

func handleCreateHistory(service *history.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		record := models.HistoryRecord{}
		if err := c.ShouldBindJSON(&record); err != nil {
			logger.Warn("could not extract search history entry from request body", "err", err.Error())
			writeError(c, http.StatusUnprocessableEntity, "failed to extract request body parameters", nil)
			return
		}

		if err := validator.Validate(record); err != nil {
			logger.Warn("could not validate search history entry", "err", err.Error())
			writeValidationError(c, err)
			return
		}

		entry, err := service.Create(record)
		if err != nil {
			logger.Error("could not save search history entry", "err", err.Error())
			writeError(c, http.StatusInternalServerError, err.Error(), nil)
			return
		}

		writeResponse(c, entry, http.StatusCreated)
	}
}

func handleListHistory(service *history.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := HistoryListRequest{}
		if err := c.ShouldBindQuery(&request); err != nil {
			logger.Warn("could not extract expected params from list history request", "err", err.Error())
			writeError(c, http.StatusBadRequest, "invalid query", nil)
			return
		}

		entries, err := service.List(request.Query)
		if err != nil {
			logger.Error("could not list search history", "err", err.Error())
			writeError(c, http.StatusInternalServerError, err.Error(), nil)
			return
		}

		writeResponse(c, entries, http.StatusOK)
	}
}

func handleDeleteHistory(service *history.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		if err := service.Delete(id); err != nil {
			if errors.Is(err, history.ErrNotFound) {
				writeError(c, http.StatusNotFound, "search history entry not found", nil)
				return
			}
			logger.Error("could not delete search history entry", "id", id, "err", err.Error())
			writeError(c, http.StatusInternalServerError, err.Error(), nil)
			return
		}

		writeResponse(c, nil, http.StatusNoContent)
	}
}
