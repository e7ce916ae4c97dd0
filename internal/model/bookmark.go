package model

// Bookmark is one saved page. The owner is part of the storage key and is not
// duplicated inside the record; CreatedAt/UpdatedAt are unix milliseconds
// assigned by the server.
type Bookmark struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	Summary    string    `json:"summary"`
	Note       string    `json:"note"`
	RawContent string    `json:"rawContent"`
	Tags       []string  `json:"tags"`
	Embedding  []float32 `json:"embedding,omitempty"`
	CreatedAt  int64     `json:"createdAt"`
	UpdatedAt  int64     `json:"updatedAt"`
}
