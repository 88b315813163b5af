package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"autoshop/pkg/domain/model"
)

type DashboardService interface {
	Stats(ctx context.Context, session model.Session, now time.Time) (*model.DashboardStats, error)
}

func NewDashboardService(reader model.DashboardReader) DashboardService {
	return &dashboardService{reader: reader}
}

type dashboardService struct {
	reader model.DashboardReader
}

func (s *dashboardService) Stats(ctx context.Context, session model.Session, now time.Time) (*model.DashboardStats, error) {
	if err := model.AuthorizeSession(session, model.ViewRecords); err != nil {
		return nil, err
	}
	shopID := session.Profile.ShopID
	// invoice_date is stored as a UTC date.
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var stats model.DashboardStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.InvoicesToday, err = s.reader.CountInvoicesOn(gctx, shopID, today)
		return err
	})
	g.Go(func() (err error) {
		stats.InvoicesMonth, err = s.reader.CountInvoicesSince(gctx, shopID, monthStart)
		return err
	})
	g.Go(func() (err error) {
		stats.RevenueMonth, err = s.reader.RevenueSince(gctx, shopID, monthStart)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, backendError("load dashboard", err)
	}
	return &stats, nil
}
