package tests

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"autoshop/pkg/domain/model"
)

func TestInvoiceStatusTransitions(t *testing.T) {
	all := []model.InvoiceStatus{model.Draft, model.Final, model.Paid, model.Cancelled}
	allowed := map[model.InvoiceStatus][]model.InvoiceStatus{
		model.Draft: {model.Final, model.Cancelled},
		model.Final: {model.Paid, model.Cancelled},
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, next := range allowed[from] {
				if next == to {
					want = true
				}
			}

			got, err := from.TransitionTo(to)
			if want {
				assert.NoError(t, err, "%s -> %s", from, to)
				assert.Equal(t, to, got)
			} else {
				assert.ErrorIs(t, err, model.ErrInvalidState, "%s -> %s", from, to)
				assert.Equal(t, from, got)
			}
			assert.Equal(t, want, from.CanTransitionTo(to))
		}
	}
}

func TestInvoiceStatusProperties(t *testing.T) {
	assert.True(t, model.Draft.Editable())
	assert.False(t, model.Final.Editable())
	assert.False(t, model.Paid.Editable())
	assert.False(t, model.Cancelled.Editable())

	assert.False(t, model.Draft.Terminal())
	assert.False(t, model.Final.Terminal())
	assert.True(t, model.Paid.Terminal())
	assert.True(t, model.Cancelled.Terminal())

	assert.True(t, model.Final.Valid())
	assert.False(t, model.InvoiceStatus("archived").Valid())
	assert.False(t, model.InvoiceStatus("archived").CanTransitionTo(model.Draft))
}
