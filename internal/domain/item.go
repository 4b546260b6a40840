package domain

// Item is a tracked market item. Identity is the canonical name;
// the surrogate ID is assigned once at registration and never reused.
type Item struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
