package models

import "ctb/src/types"

// Hall is the scheduling-time config store: shows reference halls by id, so
// renaming or disabling a hall never dangles existing shows.
type Hall struct {
	ID      uint   `gorm:"primarykey" json:"id"`
	Name    string `gorm:"uniqueIndex" json:"name"`
	Slug    string `json:"slug,omitempty"`
	Enabled bool   `gorm:"default:true" json:"enabled"`

	Shows []Show `json:"shows,omitempty"`

	types.Timestamps
}
