package models

import (
	"strings"
	"time"

	"github.com/paulmach/orb"
)

// HotelRecord is one row of the daily geobox match table.
// Records are loaded once per day key and are never mutated afterwards;
// views that need a different Source label work on copies.
type HotelRecord struct {
	CreationTime     time.Time  `json:"creation_time"`
	LastMatchDate    *time.Time `json:"last_match_date,omitempty"`
	AutomatchComment *string    `json:"automatch_comment,omitempty"`
	PropertyID       string     `json:"property_id"`
	HotelName        string     `json:"hotel_name"`
	Geobox           string     `json:"geobox"`
	Source           string     `json:"source"`
	Lat              float64    `json:"lat"`
	Lon              float64    `json:"lon"`
	QL2ID            int64      `json:"ql2_id"`
	Site             int        `json:"site"`
	// AutomatchFlag is AutoMatched() captured when the day is loaded.
	AutomatchFlag bool `json:"automatch_flg"`
}

// AutoMatched reports whether the automatcher annotated this record.
// The warehouse export sometimes stringifies NULL as "None".
func (r HotelRecord) AutoMatched() bool {
	if r.AutomatchComment == nil {
		return false
	}
	comment := strings.TrimSpace(*r.AutomatchComment)
	return comment != "" && comment != "None"
}

// Point returns the record location in orb (lon, lat) order.
func (r HotelRecord) Point() orb.Point {
	return orb.Point{r.Lon, r.Lat}
}

// AnnotatedRecord is a HotelRecord with its distance in meters from the page anchor.
type AnnotatedRecord struct {
	HotelRecord
	Distance int `json:"distance"`
}

// Link connects the anchor to one record of a subset.
type Link struct {
	From AnnotatedRecord `json:"from"`
	To   AnnotatedRecord `json:"to"`
}
