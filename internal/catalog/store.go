package catalog

// TitleRecord is one row of the catalog.
type TitleRecord struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Year     int    `json:"year"`
	Category string `json:"category"`
	Rating   string `json:"rating"`
	Overview string `json:"overview"`
}

// SearchResult is the outcome of a keyword search. Found is false when
// Titles is empty.
type SearchResult struct {
	Titles []TitleRecord
	Found  bool
}

// Store is the read-only query surface the HTTP layer depends on.
type Store interface {
	ListAll() []TitleRecord
	GetByID(id string) (TitleRecord, bool)
	FilterByCategory(category string) []TitleRecord
	SearchByKeyword(query string) SearchResult
	Stats() Stats
	Len() int
}
