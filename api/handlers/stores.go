package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/storefinder/logger"
	"github.com/meghashyamc/storefinder/models"
	"github.com/meghashyamc/storefinder/services/search"
	"github.com/meghashyamc/storefinder/validation"
)

const errInvalidQuery = "Invalid query"

// StoreSearchRequest keeps minRating as text so that non-numeric input is
// reported as a field error instead of a binding failure.
type StoreSearchRequest struct {
	Location  string `form:"location" json:"location" validate:"required,not_blank"`
	Type      string `form:"type" json:"type" validate:"required,not_blank"`
	MinRating string `form:"minRating" json:"minRating" validate:"rating"`
}

func (r StoreSearchRequest) toQuery() (models.StoreSearchQuery, error) {
	minRating, err := validation.ParseRating(r.MinRating)
	if err != nil {
		return models.StoreSearchQuery{}, err
	}
	return models.StoreSearchQuery{Location: r.Location, Type: r.Type, MinRating: minRating}, nil
}

func SetupStores(router gin.IRouter, logger logger.Logger, service *search.Service, validator *validation.Validator) {
	router.GET("/stores", handleStoreSearch(service, logger, validator))

}

func handleStoreSearch(service *search.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := StoreSearchRequest{}
		if err := c.ShouldBindQuery(&request); err != nil {
			logger.Warn("could not extract expected params from store search request", "err", err.Error())
			writeError(c, http.StatusBadRequest, errInvalidQuery, nil)
			return
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate store search request", "err", err.Error())
			writeValidationError(c, err)
			return
		}

		query, err := request.toQuery()
		if err != nil {
			writeError(c, http.StatusBadRequest, errInvalidQuery, map[string][]string{"minRating": {err.Error()}})
			return
		}

		writeResponse(c, service.Search(c.Request.Context(), query), http.StatusOK)
	}
}

func writeValidationError(c *gin.Context, err error) {
	var fieldErrs *validation.FieldErrors
	if errors.As(err, &fieldErrs) {
		writeError(c, http.StatusBadRequest, errInvalidQuery, fieldErrs.Fields)
		return
	}
	writeError(c, http.StatusBadRequest, err.Error(), nil)
}
