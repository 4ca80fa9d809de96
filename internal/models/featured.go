package models

// FeaturedSlots is the minimum number of snaps the featured list must hold
// before it can be saved.
const FeaturedSlots = 16

// Section is a store category a snap is listed in.
type Section struct {
	Name     string `json:"name"`
	Featured bool   `json:"featured,omitempty"`
}

// FeaturedSnap is one entry of the featured list.
type FeaturedSnap struct {
	SnapID              string    `json:"snap_id"`
	PackageName         string    `json:"package_name"`
	Title               string    `json:"title"`
	Summary             string    `json:"summary"`
	IconURL             string    `json:"icon_url"`
	DeveloperName       string    `json:"developer_name"`
	DeveloperValidation string    `json:"developer_validation"`
	Origin              string    `json:"origin"`
	Sections            []Section `json:"sections"`
	Media               []Media   `json:"media,omitempty"`
}

// SaveResult is the answer to POST /featured.
type SaveResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// SearchPackage is the package part of a store search hit.
type SearchPackage struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	IconURL     string `json:"icon_url"`
}

// SearchPublisher is the publisher part of a store search hit.
type SearchPublisher struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Validation  string `json:"validation"`
}

// SearchSnap is one store search hit.
type SearchSnap struct {
	SnapID     string          `json:"snap_id"`
	Package    SearchPackage   `json:"package"`
	Publisher  SearchPublisher `json:"publisher"`
	Categories []Section       `json:"categories"`
}

// SearchResponse is the payload of GET /store/store.json.
type SearchResponse struct {
	Packages []SearchSnap `json:"packages"`
}

// Featured converts a search hit into a featured entry. A "starred"
// publisher validation is stored as "star".
func (s SearchSnap) Featured() FeaturedSnap {
	validation := s.Publisher.Validation
	if validation == "starred" {
		validation = "star"
	}
	return FeaturedSnap{
		SnapID:              s.SnapID,
		PackageName:         s.Package.Name,
		Title:               s.Package.DisplayName,
		Summary:             s.Package.Description,
		IconURL:             s.Package.IconURL,
		DeveloperName:       s.Publisher.DisplayName,
		DeveloperValidation: validation,
		Origin:              s.Publisher.Name,
		Sections:            s.Categories,
	}
}
