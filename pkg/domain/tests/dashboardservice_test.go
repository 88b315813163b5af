package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoshop/pkg/domain/model"
	"autoshop/pkg/domain/service"
)

func TestDashboardStats(t *testing.T) {
	reader := &mockDashboardReader{today: 2, month: 14, revenue: decimal.RequireFromString("4211.30")}
	svc := service.NewDashboardService(reader)
	now := time.Date(2024, time.March, 17, 15, 42, 0, 0, time.UTC)

	stats, err := svc.Stats(context.Background(), staffSession(uuid.New()), now)

	require.NoError(t, err)
	assert.Equal(t, 2, stats.InvoicesToday)
	assert.Equal(t, 14, stats.InvoicesMonth)
	assert.Equal(t, "4211.30", stats.RevenueMonth.StringFixed(2))

	require.Len(t, reader.days, 1)
	assert.Equal(t, time.Date(2024, time.March, 17, 0, 0, 0, 0, time.UTC), reader.days[0])
	for _, from := range reader.since {
		assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), from)
	}
}

func TestDashboardStats_CountsInUTC(t *testing.T) {
	reader := &mockDashboardReader{}
	svc := service.NewDashboardService(reader)
	berlin := time.FixedZone("CEST", 2*60*60)
	now := time.Date(2024, time.March, 1, 1, 30, 0, 0, berlin)

	_, err := svc.Stats(context.Background(), staffSession(uuid.New()), now)

	require.NoError(t, err)
	require.Len(t, reader.days, 1)
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), reader.days[0])
	require.NotEmpty(t, reader.since)
	for _, from := range reader.since {
		assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), from)
	}
}

func TestDashboardStats_ReaderFailure(t *testing.T) {
	reader := &mockDashboardReader{err: errors.New("too many connections")}
	svc := service.NewDashboardService(reader)

	_, err := svc.Stats(context.Background(), staffSession(uuid.New()), time.Now())

	assert.ErrorIs(t, err, model.ErrCollaborator)
	assert.Equal(t, "too many connections", err.Error())
}

func TestDashboardStats_RequiresProfile(t *testing.T) {
	svc := service.NewDashboardService(&mockDashboardReader{})

	_, err := svc.Stats(context.Background(), model.Session{}, time.Now())

	assert.ErrorIs(t, err, model.ErrUnauthorized)
}
