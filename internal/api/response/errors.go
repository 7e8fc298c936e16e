package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/apperrors"
)

// RetryHint is attached to errors caused by the upstream fund API.
const RetryHint = "the fund data service is unreachable; retry with POST /api/funds/reload"

type errorClass struct {
	sentinels []error
	status    int
}

// Checked in order; the first class with a matching sentinel wins.
var errorClasses = []errorClass{
	{[]error{apperrors.ErrSelectionLimitReached, apperrors.ErrFavoritesLimitReached, apperrors.ErrNotEnoughFunds}, http.StatusConflict},
	{[]error{apperrors.ErrFundNotFound, apperrors.ErrNAVNotFound}, http.StatusNotFound},
	{[]error{apperrors.ErrInvalidSchemeCode, apperrors.ErrInvalidCredentials}, http.StatusBadRequest},
	{[]error{apperrors.ErrSessionNotFound}, http.StatusUnauthorized},
	{[]error{apperrors.ErrCatalogUnavailable, apperrors.ErrFailedToRetrieveNAV, apperrors.ErrTransport, apperrors.ErrDecode, apperrors.ErrInvalidAddress}, http.StatusBadGateway},
	{[]error{context.DeadlineExceeded}, http.StatusGatewayTimeout},
}

// StatusFor returns the HTTP status for a service error and the sentinel
// that decided it. The sentinel is nil for unclassified errors.
func StatusFor(err error) (int, error) {
	for _, class := range errorClasses {
		for _, sentinel := range class.sentinels {
			if errors.Is(err, sentinel) {
				return class.status, sentinel
			}
		}
	}
	return http.StatusInternalServerError, nil
}

// RespondServiceError maps err to a status and writes it. fallback is the
// message used for unclassified errors.
func RespondServiceError(w http.ResponseWriter, err error, fallback string) {
	status, sentinel := StatusFor(err)

	message := fallback
	if sentinel != nil {
		message = sentinel.Error()
	}

	var details interface{} = err.Error()
	if status == http.StatusBadGateway {
		details = map[string]string{
			"reason": err.Error(),
			"hint":   RetryHint,
		}
	}
	RespondError(w, status, message, details)
}
