package searchdb

// Document is the searchable projection of a history entry.
type Document struct {
	ID       string `json:"id"`
	Location string `json:"location"`
	Type     string `json:"type"`
}

type Result struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}
