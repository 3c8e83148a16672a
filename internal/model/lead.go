package model

// SentinelNA is the placeholder carried for absent rating signals. It is
// distinct from zero: an explicitly-missing count normalizes to 0, while a
// malformed non-sentinel value disqualifies the candidate.
const SentinelNA = "N/A"

// Coordinate is a resolved latitude/longitude pair.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RawCandidate is a provider-native listing as returned by one search page.
// Rating and RatingCount carry the provider value verbatim (numeric text) or
// SentinelNA when the field was absent. PlaceID is the stable identifier used
// for deduplication and is carried first-class through every stage, never
// re-derived from the source URL.
type RawCandidate struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	PlaceID     string `json:"place_id"`
	Rating      string `json:"rating"`
	RatingCount string `json:"rating_count"`
	SourceURL   string `json:"source_url"`
}

// HasIdentity reports whether the candidate carries a usable stable identifier.
func (c RawCandidate) HasIdentity() bool {
	return c.PlaceID != "" && c.PlaceID != SentinelNA
}

// Lead is a candidate that passed the distance and rating filter. Immutable
// once created; the address is the original provider string, not the
// re-resolved form.
type Lead struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Rating      string `json:"rating"`
	RatingCount int    `json:"rating_count"`
	SourceURL   string `json:"source_url"`
}
