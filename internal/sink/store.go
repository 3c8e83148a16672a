package sink

import (
	"context"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/store"
)

// StoreSink persists leads to the SQLite run history.
type StoreSink struct {
	store *store.SQLiteStore
	runID string
}

// NewStoreSink creates a StoreSink writing leads under the given run.
func NewStoreSink(st *store.SQLiteStore, runID string) *StoreSink {
	return &StoreSink{store: st, runID: runID}
}

func (s *StoreSink) Write(ctx context.Context, leads []model.Lead) error {
	return s.store.InsertLeads(ctx, s.runID, leads)
}
