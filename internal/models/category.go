package models

// Default dashboard categories, in display order.
const (
	CategoryPopular  = "popular"
	CategoryRecent   = "recent"
	CategoryTrending = "trending"
	CategoryTopRated = "top_rated"
)

// CategoryLabel pairs a category id with its dashboard heading.
type CategoryLabel struct {
	ID    string
	Label string
}

// DashboardCategories lists the categories shown on the overview.
var DashboardCategories = []CategoryLabel{
	{ID: CategoryPopular, Label: "Most popular"},
	{ID: CategoryRecent, Label: "Recently updated"},
	{ID: CategoryTrending, Label: "Trending"},
	{ID: CategoryTopRated, Label: "Top Rated"},
}

// Category is a recommendation category.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CategoryRef is the short category form embedded in excluded snap groups.
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ExcludedGroup lists the snaps excluded from one category.
type ExcludedGroup struct {
	Category CategoryRef `json:"category"`
	Snaps    []Snap      `json:"snaps"`
}
