package domain

// Candidate is a single retrieval hit: a product ID with its cosine
// similarity score. Ordering comes entirely from the vector store.
type Candidate struct {
	ProductID int64
	Score     float64
}

// ProductSummary is a vector-backed product hit returned by /vector/search.
type ProductSummary struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Price     int64   `json:"price"`
	Score     float64 `json:"score"`
}
