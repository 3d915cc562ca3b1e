package models

import "ctb/src/types"

// Movie is keyed by the external catalog id and cached locally on first
// reference. Rows are effectively immutable once written.
type Movie struct {
	ID           string           `gorm:"primarykey" json:"id"`
	Title        string           `json:"title,omitempty"`
	Overview     string           `json:"overview,omitempty"`
	PosterPath   string           `json:"poster_path,omitempty"`
	BackdropPath string           `json:"backdrop_path,omitempty"`
	ReleaseDate  string           `json:"release_date,omitempty"`
	VoteAverage  float32          `json:"vote_average,omitempty"`
	Runtime      uint             `json:"runtime,omitempty"`
	Genres       types.JSONBArray `gorm:"type:jsonb" json:"genres,omitempty"`
	Casts        types.JSONBArray `gorm:"type:jsonb" json:"casts,omitempty"`
	Trailers     types.JSONBArray `gorm:"type:jsonb" json:"trailers,omitempty"`

	types.Timestamps
}
