package review

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/stwalsh4118/hotelmatch/internal/models"
	"github.com/stwalsh4118/hotelmatch/internal/subsets"
)

// Layer is one toggleable map layer handed to the presentation layer.
type Layer struct {
	Name    string                   `json:"name"`
	Source  string                   `json:"source"`
	Records []models.AnnotatedRecord `json:"records"`
	Color   subsets.Color            `json:"color"`
}

// MapBounds is the viewport covering every record on the page.
type MapBounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Center is where the map is centered: the anchor.
type Center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// View is everything the presentation layer needs to render one page.
type View struct {
	Anchor           models.HotelRecord       `json:"anchor"`
	Bounds           orb.Bound                `json:"-"`
	Day              string                   `json:"day"`
	Geobox           string                   `json:"geobox"`
	Mode             Mode                     `json:"mode"`
	Headline         string                   `json:"headline"`
	Matched          []models.AnnotatedRecord `json:"matched"`
	Surrounding      []models.AnnotatedRecord `json:"surrounding"`
	MatchedLayers    []Layer                  `json:"matched_layers"`
	SurroundLayers   []Layer                  `json:"surrounding_layers"`
	MatchedLinks     []models.Link            `json:"matched_links"`
	SurroundingLinks []models.Link            `json:"surrounding_links"`
	Page             int                      `json:"page"`
	Total            int                      `json:"total"`
	MaxDistance      int                      `json:"max_distance"`
	MapBounds        MapBounds                `json:"bounds"`
	Center           Center                   `json:"center"`
}

// BuildView lays out the session's current page.
//
// In surround mode the surrounding hotels are split per source and each
// listing is linked to the first listing of its property, while the matched
// property collapses into one dot; match mode is the reverse. Matched links
// always run from the anchor.
func BuildView(s *Session, catalog *subsets.Catalog) View {
	anchor := s.Anchor()
	matched := s.Matched()
	surrounding := s.Surrounding()
	maxDistance := s.MaxDistance()

	v := View{
		Day:         s.Day(),
		Page:        s.Page(),
		Total:       s.Total(),
		Geobox:      s.Geobox(),
		Anchor:      anchor,
		MaxDistance: maxDistance,
		Mode:        s.Mode(),
		Matched:     matched,
		Surrounding: surrounding,
	}

	if s.Mode() == ModeSurround {
		for _, g := range subsets.Partition(surrounding, catalog) {
			v.SurroundLayers = append(v.SurroundLayers, Layer{
				Name:    fmt.Sprintf("%s (%d)", g.Source, len(g.Records)),
				Source:  g.Source,
				Color:   g.Color,
				Records: g.Records,
			})
		}
		v.SurroundingLinks = subsets.Links(surrounding)

		v.MatchedLayers = []Layer{{
			Name:    "Matched Property",
			Source:  subsets.MultipleLabel,
			Color:   subsets.MultipleColor(),
			Records: subsets.Dedup(matched),
		}}
	} else {
		if len(surrounding) > 0 {
			deduped := subsets.Dedup(surrounding)
			v.SurroundLayers = []Layer{{
				Name:    fmt.Sprintf("Unmatched Hotels within %dm (%d)", maxDistance, len(deduped)),
				Source:  subsets.MultipleLabel,
				Color:   subsets.MultipleColor(),
				Records: deduped,
			}}
		}

		for _, g := range subsets.Partition(matched, catalog) {
			v.MatchedLayers = append(v.MatchedLayers, Layer{
				Name:    fmt.Sprintf("Match %s (%d)", g.Source, len(g.Records)),
				Source:  g.Source,
				Color:   g.Color,
				Records: g.Records,
			})
		}
	}
	v.MatchedLinks = subsets.Links(matched)

	v.Headline = headline(v)
	v.Bounds = bounds(anchor, matched, surrounding)
	v.MapBounds = MapBounds{
		MinLat: v.Bounds.Min.Lat(),
		MinLon: v.Bounds.Min.Lon(),
		MaxLat: v.Bounds.Max.Lat(),
		MaxLon: v.Bounds.Max.Lon(),
	}
	v.Center = Center{Lat: anchor.Lat, Lon: anchor.Lon}
	return v
}

func headline(v View) string {
	msg := " not showing surrounding properties"
	if v.MaxDistance > 0 {
		msg = fmt.Sprintf("and Surrounding properties within %d meters", v.MaxDistance)
	}
	return fmt.Sprintf("Match # %d / %d - %s: %s\n%s",
		v.Page+1, v.Total, v.Anchor.Source, v.Anchor.HotelName, msg)
}

// bounds covers every record on the page so a map can fit them.
func bounds(anchor models.HotelRecord, groups ...[]models.AnnotatedRecord) orb.Bound {
	b := anchor.Point().Bound()
	for _, g := range groups {
		for _, r := range g {
			b = b.Extend(r.Point())
		}
	}
	return b
}
