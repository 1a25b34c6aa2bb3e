package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	customError "github.com/segyhp/repayment-engine/pkg/errors"
	"github.com/segyhp/repayment-engine/pkg/response"
)

// decodeJSON reads and validates a JSON body, writing the error response itself on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.ErrorWithCode(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err)
		return false
	}

	if err := v.Struct(dst); err != nil {
		response.ErrorWithCode(w, http.StatusUnprocessableEntity, customError.ErrCodeValidation, "Validation failed", err)
		return false
	}

	return true
}

func pathUUID(w http.ResponseWriter, r *http.Request, name, code, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.ErrorWithCode(w, http.StatusBadRequest, code, message, err)
		return uuid.Nil, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var businessErr *customError.BusinessError
	if !errors.As(err, &businessErr) {
		logger.ErrorContext(r.Context(), "unclassified error", "path", r.URL.Path, "error", err)
		response.InternalServerError(w, "Internal server error", nil)
		return
	}

	status := statusFor(businessErr.Code)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "code", businessErr.Code, "error", err)
	}

	// the cause stays in the logs, clients only get code and message
	response.ErrorWithCode(w, status, businessErr.Code, businessErr.Message, nil)
}

func statusFor(code string) int {
	switch code {
	case customError.ErrCodeValidation, customError.ErrCodeCurrencyMismatch, customError.ErrCodeOverpayment:
		return http.StatusUnprocessableEntity
	case customError.ErrCodeLoanNotFound, customError.ErrCodeDebitCardNotFound, customError.ErrCodeTransactionNotFound:
		return http.StatusNotFound
	case customError.ErrCodeForbidden, customError.ErrCodeDebitCardHasTxns:
		return http.StatusForbidden
	case customError.ErrCodeConcurrentModification:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
