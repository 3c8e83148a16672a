package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/events"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/search"
	"github.com/sells-group/leadgen-cli/pkg/places"
)

// keywordClient scripts one NearbySearch response per keyword.
type keywordClient struct {
	byKeyword map[string]*places.NearbySearchResponse
	errs      map[string]error
	requests  []places.NearbySearchRequest
}

func (k *keywordClient) NearbySearch(_ context.Context, req places.NearbySearchRequest) (*places.NearbySearchResponse, error) {
	k.requests = append(k.requests, req)
	if err, ok := k.errs[req.Keyword]; ok {
		return nil, err
	}
	if resp, ok := k.byKeyword[req.Keyword]; ok {
		return resp, nil
	}
	return &places.NearbySearchResponse{Status: places.StatusZeroResults}, nil
}

func okPage(results ...places.Place) *places.NearbySearchResponse {
	return &places.NearbySearchResponse{Status: places.StatusOK, Results: results}
}

func restaurant(name, vicinity, id string) places.Place {
	return places.Place{Name: name, Vicinity: vicinity, PlaceID: id, Rating: 4.5, UserRatingsTotal: 80.0}
}

func newTestPipeline(t *testing.T, gc *fakeGeocoder, client places.Client, cfg Config) *Pipeline {
	t.Helper()
	engine := search.NewEngine(client, nil, search.Config{PageLimit: 10, SettleDelay: time.Millisecond})
	return New(gc, engine, events.NopObserver{}, cfg)
}

func TestPipeline_OriginUnresolvedIsFatal(t *testing.T) {
	gc := &fakeGeocoder{} // nothing resolves
	p := newTestPipeline(t, gc, &keywordClient{}, Config{
		BaseAddress: "1600 Nowhere Ave",
		RadiusMiles: 3.0,
	})

	result, err := p.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not resolve")
	assert.Nil(t, result)
}

func TestPipeline_OriginGeocodeErrorIsFatal(t *testing.T) {
	gc := &fakeGeocoder{errs: map[string]error{"Base St": context.DeadlineExceeded}}
	p := newTestPipeline(t, gc, &keywordClient{}, Config{
		BaseAddress: "Base St",
		RadiusMiles: 3.0,
	})

	result, err := p.Run(context.Background())

	require.Error(t, err)
	assert.Nil(t, result)
}

func TestPipeline_DeduplicatesAcrossKeywords(t *testing.T) {
	gc := &fakeGeocoder{coords: map[string]model.Coordinate{
		"Base St":     testOrigin,
		"1 First St":  milesNorth(testOrigin, 0.5),
		"2 Second St": milesNorth(testOrigin, 1.0),
	}}
	client := &keywordClient{byKeyword: map[string]*places.NearbySearchResponse{
		"sushi":  okPage(restaurant("Ramen Bar", "1 First St", "abc")),
		"bakery": okPage(restaurant("Ramen Bar", "1 First St", "abc"), restaurant("Corner Bakery", "2 Second St", "def")),
	}}

	p := newTestPipeline(t, gc, client, Config{
		BaseAddress: "Base St",
		RadiusMiles: 3.0,
		Keywords:    []string{"sushi", "bakery"},
	})

	result, err := p.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, result.Fetched)
	assert.Equal(t, 2, result.Unique)
	require.Len(t, result.Leads, 2)
	assert.Equal(t, "Ramen Bar", result.Leads[0].Name)
	assert.Equal(t, "Corner Bakery", result.Leads[1].Name)
	assert.Empty(t, result.FailedKeywords)
}

func TestPipeline_FailedKeywordKeepsOthers(t *testing.T) {
	gc := &fakeGeocoder{coords: map[string]model.Coordinate{
		"Base St":    testOrigin,
		"1 First St": milesNorth(testOrigin, 0.5),
	}}
	client := &keywordClient{
		byKeyword: map[string]*places.NearbySearchResponse{
			"sushi": okPage(restaurant("Sushi Tomi", "1 First St", "abc")),
			"pizza": {Status: places.Status("REQUEST_DENIED"), ErrorMessage: "key rejected"},
		},
	}

	p := newTestPipeline(t, gc, client, Config{
		BaseAddress: "Base St",
		RadiusMiles: 3.0,
		Keywords:    []string{"pizza", "sushi"},
	})

	result, err := p.Run(context.Background())

	// The failed query is reported on the result, not as a run error.
	require.NoError(t, err)
	assert.Equal(t, []string{"pizza"}, result.FailedKeywords)
	require.Len(t, result.Leads, 1)
	assert.Equal(t, "Sushi Tomi", result.Leads[0].Name)
}

func TestPipeline_NoCandidates(t *testing.T) {
	gc := &fakeGeocoder{coords: map[string]model.Coordinate{"Base St": testOrigin}}
	p := newTestPipeline(t, gc, &keywordClient{}, Config{
		BaseAddress: "Base St",
		RadiusMiles: 3.0,
		Keywords:    []string{"sushi"},
	})

	result, err := p.Run(context.Background())

	require.NoError(t, err)
	assert.Zero(t, result.Fetched)
	assert.Zero(t, result.Unique)
	assert.Empty(t, result.Leads)
}

func TestPipeline_EmptyKeywordListRunsUnscopedQuery(t *testing.T) {
	gc := &fakeGeocoder{coords: map[string]model.Coordinate{"Base St": testOrigin}}
	client := &keywordClient{}
	p := newTestPipeline(t, gc, client, Config{
		BaseAddress: "Base St",
		RadiusMiles: 3.0,
	})

	_, err := p.Run(context.Background())

	require.NoError(t, err)
	require.Len(t, client.requests, 1)
	assert.Empty(t, client.requests[0].Keyword)
}

func TestPipeline_RadiusConvertedToMeters(t *testing.T) {
	gc := &fakeGeocoder{coords: map[string]model.Coordinate{"Base St": testOrigin}}
	client := &keywordClient{}
	p := newTestPipeline(t, gc, client, Config{
		BaseAddress: "Base St",
		RadiusMiles: 3.0,
		Keywords:    []string{"sushi"},
	})

	_, err := p.Run(context.Background())

	require.NoError(t, err)
	require.Len(t, client.requests, 1)
	assert.Equal(t, 4828, client.requests[0].RadiusMeters) // 3.0 mi * 1609.34 m/mi, truncated
}

func TestPipeline_CancelledContextIsFatal(t *testing.T) {
	gc := &fakeGeocoder{coords: map[string]model.Coordinate{"Base St": testOrigin}}
	ctx, cancel := context.WithCancel(context.Background())

	client := &keywordClient{errs: map[string]error{"sushi": context.Canceled}}
	p := newTestPipeline(t, gc, client, Config{
		BaseAddress: "Base St",
		RadiusMiles: 3.0,
		Keywords:    []string{"sushi"},
	})

	cancel()
	result, err := p.Run(ctx)

	require.Error(t, err)
	assert.Nil(t, result)
}
