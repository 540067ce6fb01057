package db

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Vector       []float32
	K            int
	Filters      map[string]string // pre-filter on TAG fields
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
// Score is the raw __vector_score (cosine distance for our indexes).
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
