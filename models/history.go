package models

// HistoryRecord is the payload stored by the history collection. The query
// fields are flattened next to the results, as the history backend expects.
type HistoryRecord struct {
	Location  string            `json:"location" validate:"required,not_blank"`
	Type      string            `json:"type" validate:"required,not_blank"`
	MinRating float64           `json:"minRating" validate:"min=0,max=5"`
	Geocoded  *GeocodedLocation `json:"geocoded"`
	Stores    []Store           `json:"stores"`
	Timestamp string            `json:"timestamp" validate:"required"`
}

// HistoryEntry is a HistoryRecord with the identifier assigned by the store.
type HistoryEntry struct {
	ID string `json:"_id"`
	HistoryRecord
}

func NewHistoryRecord(response StoreSearchResponse) HistoryRecord {
	stores := response.Stores
	if stores == nil {
		stores = []Store{}
	}
	return HistoryRecord{
		Location:  response.Query.Location,
		Type:      response.Query.Type,
		MinRating: response.Query.MinRating,
		Geocoded:  response.Geocoded,
		Stores:    stores,
		Timestamp: response.Timestamp,
	}
}

func (r HistoryRecord) Query() StoreSearchQuery {
	return StoreSearchQuery{Location: r.Location, Type: r.Type, MinRating: r.MinRating}
}

// Response rebuilds the search response this entry was created from.
func (e HistoryEntry) Response() StoreSearchResponse {
	return StoreSearchResponse{
		Query:     e.Query(),
		Geocoded:  e.Geocoded,
		Stores:    e.Stores,
		Timestamp: e.Timestamp,
	}
}

// DeleteTally reports the outcome of a best-effort bulk delete.
type DeleteTally struct {
	Succeeded []string `json:"succeeded"`
	Failed    []string `json:"failed"`
}

func (t DeleteTally) Complete() bool {
	return len(t.Failed) == 0
}
