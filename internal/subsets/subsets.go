package subsets

import (
	"github.com/stwalsh4118/hotelmatch/internal/models"
)

// AnchorOffset is subtracted from the anchor latitude on link origins so a
// self-link does not collapse onto a single point.
const AnchorOffset = 0.00001

// Group is one source layer of a subset.
type Group struct {
	Source  string                   `json:"source"`
	Records []models.AnnotatedRecord `json:"records"`
	Color   Color                    `json:"color"`
	Code    int                      `json:"code,omitempty"`
}

// Partition splits records by site code. Known sites with at least one
// record come first in catalog order, followed by a single Others group
// holding every record with an unknown site code. Records keep their
// relative order inside each group.
func Partition(records []models.AnnotatedRecord, catalog *Catalog) []Group {
	buckets := make(map[int][]models.AnnotatedRecord)
	var others []models.AnnotatedRecord

	for _, r := range records {
		if _, ok := catalog.Lookup(r.Site); ok {
			buckets[r.Site] = append(buckets[r.Site], r)
			continue
		}
		others = append(others, r)
	}

	groups := make([]Group, 0, len(buckets)+1)
	for _, s := range catalog.sources {
		members := buckets[s.Code]
		if len(members) == 0 {
			continue
		}
		groups = append(groups, Group{
			Source:  s.Name,
			Code:    s.Code,
			Color:   s.Color,
			Records: members,
		})
	}
	if len(others) > 0 {
		groups = append(groups, Group{
			Source:  OthersLabel,
			Color:   othersColor,
			Records: others,
		})
	}
	return groups
}

// Dedup keeps the first record of every ql2_id, in input order, relabelled
// as Multiple since it stands for all of that property's listings.
func Dedup(records []models.AnnotatedRecord) []models.AnnotatedRecord {
	seen := make(map[int64]struct{}, len(records))
	out := make([]models.AnnotatedRecord, 0, len(records))

	for _, r := range records {
		if _, ok := seen[r.QL2ID]; ok {
			continue
		}
		seen[r.QL2ID] = struct{}{}
		r.Source = MultipleLabel
		out = append(out, r)
	}
	return out
}

// Links connects every record to the first record of its own property.
// Origins are the first occurrence of each ql2_id in input order, with
// latitude lowered by AnchorOffset, so every property gets one self-link.
// Links are grouped by property in origin order and keep input order within
// a property.
func Links(records []models.AnnotatedRecord) []models.Link {
	origins := make(map[int64]models.AnnotatedRecord, len(records))
	order := make([]int64, 0, len(records))
	members := make(map[int64][]models.AnnotatedRecord, len(records))

	for _, r := range records {
		if _, ok := origins[r.QL2ID]; !ok {
			from := r
			from.Lat -= AnchorOffset
			origins[r.QL2ID] = from
			order = append(order, r.QL2ID)
		}
		members[r.QL2ID] = append(members[r.QL2ID], r)
	}

	links := make([]models.Link, 0, len(records))
	for _, id := range order {
		for _, r := range members[id] {
			links = append(links, models.Link{From: origins[id], To: r})
		}
	}
	return links
}
