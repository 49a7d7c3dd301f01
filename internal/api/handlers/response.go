package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cityexplorer/backend/internal/infrastructure/observability"
	apperrors "github.com/cityexplorer/backend/pkg/errors"
)

// genericErrorMessage is the only detail a client sees for a 5xx
const genericErrorMessage = "Sorry, something went wrong"

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps the error type to a status code and logs the
// full chain server-side
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	logger := observability.LoggerFromContext(r.Context())

	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeValidation:
		logger.Debug().Err(err).Msg("rejected request")
		respondWithError(w, http.StatusBadRequest, appErrorMessage(err))
	case apperrors.ErrorTypeNotFound:
		logger.Debug().Err(err).Msg("not found")
		respondWithError(w, http.StatusNotFound, appErrorMessage(err))
	default:
		logger.Error().Err(err).Str("error_type", string(apperrors.TypeOf(err))).Msg("request failed")
		respondWithError(w, http.StatusInternalServerError, genericErrorMessage)
	}
}

func appErrorMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return genericErrorMessage
}
