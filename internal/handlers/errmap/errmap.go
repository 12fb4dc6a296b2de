// Package errmap turns ledger errors into huma problem responses.
package errmap

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/ledger"
)

// Status returns the HTTP status for err.
func Status(err error) int {
	switch ledger.KindOf(err) {
	case ledger.KindValidation, ledger.KindConfiguration:
		return http.StatusBadRequest
	case ledger.KindMapping:
		return http.StatusUnprocessableEntity
	case ledger.KindNotFound:
		return http.StatusNotFound
	case ledger.KindDuplicatePosting:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ToHuma converts a service error. Errors that are already huma errors pass through.
// A duplicate posting names the existing entry when its id is known.
func ToHuma(err error) error {
	if err == nil {
		return nil
	}
	var se huma.StatusError
	if errors.As(err, &se) {
		return err
	}

	status := Status(err)
	var le *ledger.Error
	if errors.As(err, &le) && le.Kind == ledger.KindDuplicatePosting && le.JournalID != uuid.Nil {
		return huma.NewError(status, err.Error(), &huma.ErrorDetail{
			Message:  "existing journal entry",
			Location: "journalID",
			Value:    le.JournalID.String(),
		})
	}
	return huma.NewError(status, err.Error())
}
