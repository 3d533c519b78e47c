package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestSafeAttributesDropsFreeText(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("voucher_type", "sales"),
		attribute.String("party_name", "Supplier A"),
		attribute.String("narration", "cash paid"),
	)
	assert.Len(t, attrs, 1)
	assert.Equal(t, attribute.Key("voucher_type"), attrs[0].Key)
}

func TestSafeError(t *testing.T) {
	assert.Nil(t, SafeError(nil))
	assert.ErrorIs(t, SafeError(context.DeadlineExceeded), context.DeadlineExceeded)
	assert.EqualError(t, SafeError(errors.New("party Supplier A not found")), "request failed")
}
