package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	companydomain "github.com/smallbiznis/ledgerly/internal/company/domain"
	"github.com/smallbiznis/ledgerly/internal/directory"
	voucherdomain "github.com/smallbiznis/ledgerly/internal/voucher/domain"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		status    int
		errType   string
		retryable bool
	}{
		{"voucher validation", voucherdomain.ValidationErrors{{Field: "date", Code: "required"}}, http.StatusBadRequest, "validation_error", false},
		{"wrapped not found", fmt.Errorf("view: %w", voucherdomain.ErrVoucherNotFound), http.StatusNotFound, "not_found", false},
		{"company not found", companydomain.ErrNotFound, http.StatusNotFound, "not_found", false},
		{"numbering conflict", &voucherdomain.NumberingConflictError{VoucherType: "payment", Retryable: true}, http.StatusConflict, "numbering_conflict", true},
		{"revision conflict", voucherdomain.ErrRevisionConflict, http.StatusConflict, "conflict", false},
		{"directory down", &directory.FetchError{Kind: "ledgers", Err: errors.New("timeout")}, http.StatusServiceUnavailable, "directory_unavailable", true},
		{"persistence", &voucherdomain.PersistenceError{Op: "create", Err: errors.New("disk full")}, http.StatusInternalServerError, "internal_error", false},
		{"list filter", voucherdomain.ErrInvalidListFilter, http.StatusBadRequest, "validation_error", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := mapError(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.errType, payload.Type)
			assert.Equal(t, tc.retryable, payload.Retryable)
		})
	}
}

func TestMapErrorKeepsEveryFieldError(t *testing.T) {
	err := voucherdomain.ValidationErrors{
		{Field: "date", Code: voucherdomain.CodeRequired, Message: "date is required"},
		{Field: "items[0].quantity", Code: voucherdomain.CodeInvalidQuantity, Message: "quantity must be positive"},
	}

	_, payload := mapError(err)

	assert.Equal(t, []ValidationError{
		{Field: "date", Code: "required", Message: "date is required"},
		{Field: "items[0].quantity", Code: "invalid_quantity", Message: "quantity must be positive"},
	}, payload.Errors)
}

func TestClassifyErrorForLog(t *testing.T) {
	errType, code := classifyErrorForLog(voucherdomain.ValidationErrors{{Field: "date", Code: "future_date"}})
	assert.Equal(t, "validation_error", errType)
	assert.Equal(t, "future_date", code)

	errType, code = classifyErrorForLog(voucherdomain.ErrVoucherNotFound)
	assert.Equal(t, "not_found", errType)
	assert.Equal(t, "not_found", code)
}
