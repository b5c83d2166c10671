package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/christopherklint97/plantbill/internal/remote"
	"github.com/christopherklint97/plantbill/internal/store"
	"github.com/christopherklint97/plantbill/internal/timesheet"
)

// LastSyncKey is the state key holding the time of the last successful sync.
const LastSyncKey = "last_sync"

// Fetcher pulls documents and assets from the remote API.
type Fetcher interface {
	FetchTimesheets(ctx context.Context, entityID, from, to string) ([]timesheet.Document, error)
	FetchAssets(ctx context.Context) ([]remote.Asset, error)
}

// Sink stores what a sync pulls.
type Sink interface {
	InsertDocuments(ctx context.Context, source string, docs []timesheet.Document) ([]string, error)
	UpsertAsset(ctx context.Context, a store.Asset) error
	SetState(ctx context.Context, key, value string) error
}

type SyncStats struct {
	Documents int
	Assets    int
}

// Sync copies remote timesheets dated from..to and every asset into the
// local store.
func (r *Runner) Sync(ctx context.Context, f Fetcher, sink Sink, entityID, from, to string) (SyncStats, error) {
	var stats SyncStats

	docs, err := f.FetchTimesheets(ctx, entityID, from, to)
	if err != nil {
		return stats, err
	}
	ids, err := sink.InsertDocuments(ctx, "sync", docs)
	if err != nil {
		return stats, fmt.Errorf("storing documents: %w", err)
	}
	stats.Documents = len(ids)

	assets, err := f.FetchAssets(ctx)
	if err != nil {
		return stats, err
	}
	for _, a := range assets {
		if a.ID == "" {
			r.logger.Warn("skipping asset without id", "name", a.Name)
			continue
		}
		if err := sink.UpsertAsset(ctx, store.Asset{ID: a.ID, Name: a.Name, Rates: a.Rates()}); err != nil {
			return stats, fmt.Errorf("storing asset: %w", err)
		}
		stats.Assets++
	}

	if err := sink.SetState(ctx, LastSyncKey, r.now().UTC().Format(time.RFC3339)); err != nil {
		return stats, fmt.Errorf("recording sync time: %w", err)
	}

	r.logger.Info("sync complete", "documents", stats.Documents, "assets", stats.Assets)
	return stats, nil
}
