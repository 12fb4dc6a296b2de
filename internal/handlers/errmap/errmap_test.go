package errmap

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/ledger"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ledger.NewValidationError("bad"), http.StatusBadRequest},
		{ledger.NewConfigurationError("no account 1000"), http.StatusBadRequest},
		{ledger.NewMappingError("wrong type"), http.StatusUnprocessableEntity},
		{ledger.NewNotFoundError("missing"), http.StatusNotFound},
		{ledger.NewDuplicatePostingError(ledger.SourceInvoice, uuid.Must(uuid.NewV7()), uuid.Nil), http.StatusConflict},
		{ledger.NewIntegrityError("unbalanced"), http.StatusInternalServerError},
		{ledger.NewPersistenceError("op", errors.New("conn reset")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", ledger.NewNotFoundError("x")), http.StatusNotFound},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Status(c.err), c.err.Error())
	}
}

func TestToHuma_Duplicate(t *testing.T) {
	existing := uuid.Must(uuid.NewV7())
	err := ToHuma(ledger.NewDuplicatePostingError(ledger.SourceExpense, uuid.Must(uuid.NewV7()), existing))

	var model *huma.ErrorModel
	require.ErrorAs(t, err, &model)
	assert.Equal(t, http.StatusConflict, model.Status)
	require.Len(t, model.Errors, 1)
	assert.Equal(t, existing.String(), model.Errors[0].Value)
}

func TestToHuma_DuplicateWithoutJournalID(t *testing.T) {
	err := ToHuma(ledger.NewDuplicatePostingError(ledger.SourceExpense, uuid.Must(uuid.NewV7()), uuid.Nil))

	var model *huma.ErrorModel
	require.ErrorAs(t, err, &model)
	assert.Equal(t, http.StatusConflict, model.Status)
	assert.Empty(t, model.Errors)
}

func TestToHuma_PassThrough(t *testing.T) {
	assert.Nil(t, ToHuma(nil))

	orig := huma.Error400BadRequest("already mapped")
	assert.Same(t, orig, ToHuma(orig))
}
