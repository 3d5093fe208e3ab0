package store

// WorldHit is one marketplace search result.
type WorldHit struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}
