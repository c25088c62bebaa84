// Package model defines the core domain types shared across the application.
package model

import (
	"time"
)

// LandmarkInfo describes an identified landmark. All fields are required;
// a LandmarkInfo is only constructed once identification succeeds.
type LandmarkInfo struct {
	Name      string  `json:"name"`
	City      string  `json:"city"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// GroundingSource is a web citation attached to a narration.
// Only sources with both fields present are kept.
type GroundingSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// IsWellFormed reports whether the source carries both required fields.
func (g GroundingSource) IsWellFormed() bool {
	return g.URI != "" && g.Title != ""
}

// FilterSources drops citations missing either field.
func FilterSources(in []GroundingSource) []GroundingSource {
	var out []GroundingSource
	for _, s := range in {
		if s.IsWellFormed() {
			out = append(out, s)
		}
	}
	return out
}

// Image is the in-memory image resource of a tour attempt. It is exclusively
// owned by the tour machine until promoted into a TourStop or released.
type Image struct {
	Data []byte `json:"-"`
	MIME string `json:"mime"`
}

// Release drops the pixel data. Safe to call more than once.
func (i *Image) Release() {
	if i == nil {
		return
	}
	i.Data = nil
}

// Released reports whether the pixel data has been dropped.
func (i *Image) Released() bool {
	return i == nil || i.Data == nil
}

// TourStop is one completed stop of a tour. It is only constructed after all
// three pipeline stages succeed; partial attempts never become stops.
type TourStop struct {
	Landmark  LandmarkInfo      `json:"landmark"`
	Image     *Image            `json:"-"`
	History   string            `json:"history"`
	Sources   []GroundingSource `json:"sources,omitempty"`
	Audio     string            `json:"audio,omitempty"` // base64 PCM payload
	CreatedAt time.Time         `json:"created_at"`
}

// Chat roles.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// ChatMessage is one turn of a result-view Q&A conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
