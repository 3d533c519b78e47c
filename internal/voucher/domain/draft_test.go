package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberDecodesFormValues(t *testing.T) {
	var item ItemDraft
	require.NoError(t, json.Unmarshal([]byte(`{"quantity": 2.5, "rate": "10.00", "gst_rate": null}`), &item))

	q, err := item.Quantity.Decimal()
	require.NoError(t, err)
	assert.Equal(t, "2.5", q.String())

	r, err := item.Rate.Decimal()
	require.NoError(t, err)
	assert.Equal(t, "10", r.String())

	g, err := item.GSTRate.Decimal()
	require.NoError(t, err)
	assert.True(t, g.IsZero())
}

func TestNumberRejectsExponentAndOverlongInput(t *testing.T) {
	_, err := Number("1e2000000").Decimal()
	assert.ErrorIs(t, err, ErrNumberExponent)

	_, err = Number("2E3").Decimal()
	assert.ErrorIs(t, err, ErrNumberExponent)

	_, err = Number(strings.Repeat("9", MaxNumberLength+1)).Decimal()
	assert.ErrorIs(t, err, ErrNumberTooLong)

	_, err = Number("abc").Decimal()
	assert.Error(t, err)
}
