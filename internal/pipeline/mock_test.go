package pipeline

import (
	"context"
	"math"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/pkg/geocode"
)

// testOrigin is the Mountain View origin used across pipeline tests.
var testOrigin = model.Coordinate{Latitude: 37.3861, Longitude: -122.0839}

// milesNorth returns a coordinate the given number of miles due north of p.
func milesNorth(p model.Coordinate, miles float64) model.Coordinate {
	const earthRadiusMiles = 3958.7613
	return model.Coordinate{
		Latitude:  p.Latitude + miles/earthRadiusMiles*180/math.Pi,
		Longitude: p.Longitude,
	}
}

// fakeGeocoder resolves scripted addresses and reports everything else
// unmatched.
type fakeGeocoder struct {
	coords map[string]model.Coordinate
	errs   map[string]error
	calls  []string
}

func (f *fakeGeocoder) Geocode(_ context.Context, address string) (*geocode.Result, error) {
	f.calls = append(f.calls, address)
	if err, ok := f.errs[address]; ok {
		return nil, err
	}
	if c, ok := f.coords[address]; ok {
		return &geocode.Result{Latitude: c.Latitude, Longitude: c.Longitude, Matched: true}, nil
	}
	return &geocode.Result{Matched: false}, nil
}
