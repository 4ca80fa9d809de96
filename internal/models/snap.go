// Package models defines the payloads exchanged with the recommendation backend.
package models

import "encoding/json"

// Snap is a collected snap as the backend serializes it.
type Snap struct {
	SnapID              string                `json:"snap_id"`
	Title               string                `json:"title"`
	Name                string                `json:"name"`
	Version             string                `json:"version"`
	Summary             string                `json:"summary"`
	Description         string                `json:"description"`
	Icon                string                `json:"icon"`
	Website             string                `json:"website,omitempty"`
	Contact             *string               `json:"contact"`
	Publisher           string                `json:"publisher"`
	Revision            json.Number           `json:"revision"`
	Links               []map[string][]string `json:"links"`
	Media               []Media               `json:"media"`
	DeveloperValidation string                `json:"developer_validation"`
	License             string                `json:"license"`
	LastUpdated         string                `json:"last_updated"`
}

// Media is one icon, screenshot, video, banner or logo attached to a snap.
type Media struct {
	Name   string `json:"name,omitempty"`
	Type   string `json:"type"`
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// SnapList is the payload of GET /api/snaps.
type SnapList struct {
	Snaps []Snap `json:"snaps"`
}

// Status is the acknowledgement most mutations answer with.
type Status struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SnapRef identifies a snap in exclude and include requests.
type SnapRef struct {
	SnapID   string `json:"snap_id"`
	Category string `json:"category"`
}

// SnapName identifies a snap by name in slice membership requests.
type SnapName struct {
	Name string `json:"name"`
}
