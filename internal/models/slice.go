package models

// Slice is an editorial slice: a hand-picked, named list of snaps.
type Slice struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SliceListItem is a slice with its member count.
type SliceListItem struct {
	Slice
	SnapsCount int `json:"snaps_count"`
}

// SliceDetail is a slice with its member snaps.
type SliceDetail struct {
	Slice
	Snaps []Snap `json:"snaps"`
}

// SliceInput is the body of create and update requests.
type SliceInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
