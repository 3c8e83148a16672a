// Package sink persists filtered leads. The pipeline core hands leads to a
// Sink and has no knowledge of the output medium.
package sink

import (
	"context"
	"strconv"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Columns is the ordered output schema shared by every tabular sink. Absent
// values render as the N/A sentinel so each column is present on every record.
var Columns = []string{
	"Restaurant Name",
	"Address",
	"Approximate Rating",
	"Number of Ratings",
	"Source URL",
}

// Sink writes a batch of qualified leads.
type Sink interface {
	Write(ctx context.Context, leads []model.Lead) error
}

// row maps a lead to the shared column order.
func row(l model.Lead) []string {
	rating := l.Rating
	if rating == "" {
		rating = model.SentinelNA
	}
	sourceURL := l.SourceURL
	if sourceURL == "" {
		sourceURL = model.SentinelNA
	}
	return []string{
		l.Name,
		l.Address,
		rating,
		strconv.Itoa(l.RatingCount),
		sourceURL,
	}
}
