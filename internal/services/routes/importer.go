package routes

import (
	"context"
	"fmt"
	"io"
	"time"

	"arqueo-backend/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Store persists route rows.
type Store interface {
	UpsertRoutes(ctx context.Context, routes []models.Route) (int64, error)
	ListByDay(ctx context.Context, sellerID int64, weekday string) ([]models.Route, error)
}

type Summary struct {
	Parsed   int       `json:"parsed"`
	Upserted int64     `json:"upserted"`
	Skipped  []Skipped `json:"skipped"`
	DryRun   bool      `json:"dry_run"`
}

type Importer struct {
	store  Store
	logger *logrus.Logger
}

func NewImporter(store Store, logger *logrus.Logger) *Importer {
	return &Importer{store: store, logger: logger}
}

// ImportFile parses filename's contents and upserts the routes for sellerID.
func (i *Importer) ImportFile(ctx context.Context, sellerID int64, filename string, r io.Reader, dryRun bool) (*Summary, error) {
	if sellerID == 0 {
		return nil, fmt.Errorf("seller id required")
	}
	rows, err := ReadFile(filename, r)
	if err != nil {
		return nil, err
	}
	res := ParseRows(rows)

	for _, s := range res.Skipped {
		i.logger.WithFields(logrus.Fields{"file": filename, "row": s.Row}).Warn(s.Reason)
	}

	summary := &Summary{Parsed: len(res.Records), Skipped: res.Skipped, DryRun: dryRun}
	if dryRun {
		return summary, nil
	}

	n, err := i.store.UpsertRoutes(ctx, ToModels(sellerID, res.Records))
	if err != nil {
		return nil, fmt.Errorf("upsert routes: %w", err)
	}
	summary.Upserted = n

	i.logger.WithFields(logrus.Fields{
		"file":      filename,
		"seller_id": sellerID,
		"parsed":    summary.Parsed,
		"skipped":   len(summary.Skipped),
	}).Info("routes imported")
	return summary, nil
}

// ToModels converts parsed records into route rows for sellerID.
func ToModels(sellerID int64, records []Record) []models.Route {
	now := time.Now()
	out := make([]models.Route, 0, len(records))
	for _, rec := range records {
		out = append(out, models.Route{
			ID:         uuid.New(),
			SellerID:   sellerID,
			Weekday:    rec.Weekday,
			ClientCode: rec.ClientCode,
			ClientName: rec.ClientName,
			CreatedAt:  now,
		})
	}
	return out
}
