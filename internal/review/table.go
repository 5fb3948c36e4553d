// Package review holds the reviewer's session: the day's hotel table, the
// paginator over its match groups and the matched/surrounding subsets
// derived for the current page.
package review

import (
	"errors"
	"sort"

	"github.com/stwalsh4118/hotelmatch/internal/models"
)

// ErrEmptyGroup is returned when a geobox has no records to anchor on.
var ErrEmptyGroup = errors.New("match group is empty")

// Table is the immutable set of records loaded for one day.
type Table struct {
	byGeobox map[string][]models.HotelRecord
	day      string
	geoboxes []string
	size     int
}

// NewTable indexes records by geobox. Records keep their load order inside
// each group, which decides the anchor. Geoboxes are sorted ascending and
// deduplicated; that order is the page order.
func NewTable(day string, records []models.HotelRecord) *Table {
	t := &Table{
		byGeobox: make(map[string][]models.HotelRecord),
		day:      day,
		size:     len(records),
	}
	for _, r := range records {
		if _, ok := t.byGeobox[r.Geobox]; !ok {
			t.geoboxes = append(t.geoboxes, r.Geobox)
		}
		t.byGeobox[r.Geobox] = append(t.byGeobox[r.Geobox], r)
	}
	sort.Strings(t.geoboxes)
	return t
}

// Day returns the day key the table was loaded for.
func (t *Table) Day() string { return t.day }

// Len returns the number of records in the table.
func (t *Table) Len() int { return t.size }

// Geoboxes returns the page order.
func (t *Table) Geoboxes() []string {
	out := make([]string, len(t.geoboxes))
	copy(out, t.geoboxes)
	return out
}

// GroupCount returns the number of match groups (pages).
func (t *Table) GroupCount() int { return len(t.geoboxes) }

// Geobox returns the geobox shown on a page.
func (t *Table) Geobox(page int) (string, bool) {
	if page < 0 || page >= len(t.geoboxes) {
		return "", false
	}
	return t.geoboxes[page], true
}

// Group returns the records of a geobox in load order.
func (t *Table) Group(geobox string) []models.HotelRecord {
	return t.byGeobox[geobox]
}

// Anchor returns the record that triggered the match: the first record of
// the group.
func Anchor(group []models.HotelRecord) (models.HotelRecord, error) {
	if len(group) == 0 {
		return models.HotelRecord{}, ErrEmptyGroup
	}
	return group[0], nil
}

// SplitByProperty separates the records sharing ql2ID from the rest,
// preserving order on both sides.
func SplitByProperty(group []models.HotelRecord, ql2ID int64) (same, others []models.HotelRecord) {
	for _, r := range group {
		if r.QL2ID == ql2ID {
			same = append(same, r)
		} else {
			others = append(others, r)
		}
	}
	return same, others
}
