// Package subsets splits a page's hotel subsets into the layers a reviewer
// looks at: one group per listing source, a deduplicated aggregate view and
// the anchor-to-record links drawn on the map.
package subsets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stwalsh4118/hotelmatch/internal/models"
)

// Labels for records that do not belong to a single known source.
const (
	OthersLabel   = "Others"
	MultipleLabel = "Multiple"
)

// Color is an RGBA display color.
type Color [4]uint8

var (
	othersColor   = Color{233, 233, 0, 180}
	multipleColor = Color{125, 125, 128, 200}
	defaultColor  = Color{90, 90, 90, 200}
)

// knownColors are the colors reviewers are used to for each source.
var knownColors = map[string]Color{
	"Expedia":      {5, 5, 255, 220},
	"Booking":      {225, 220, 4, 210},
	"Agoda":        {255, 20, 4, 210},
	"Trip Advisor": {2, 170, 2, 210},
	"Trivago":      {2, 220, 220, 110},
	"Priceline":    {245, 162, 54, 180},
}

// ErrInvalidCatalog is returned when the site-code mapping cannot be used.
var ErrInvalidCatalog = errors.New("invalid source catalog")

// Source is a known listing site.
type Source struct {
	Name  string
	Code  int
	Color Color
}

// Catalog is the ordered set of known listing sites. Order decides the order
// of partition groups.
type Catalog struct {
	byCode  map[int]Source
	sources []Source
}

// NewCatalog validates the mapping and assigns display colors.
// Codes must be unique and names non-empty and distinct from the reserved
// Others/Multiple labels.
func NewCatalog(sources []Source) (*Catalog, error) {
	c := &Catalog{
		byCode:  make(map[int]Source, len(sources)),
		sources: make([]Source, 0, len(sources)),
	}
	for _, s := range sources {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: site %d has no name", ErrInvalidCatalog, s.Code)
		}
		if name == OthersLabel || name == MultipleLabel {
			return nil, fmt.Errorf("%w: %q is a reserved label", ErrInvalidCatalog, name)
		}
		if _, dup := c.byCode[s.Code]; dup {
			return nil, fmt.Errorf("%w: site %d listed twice", ErrInvalidCatalog, s.Code)
		}
		s.Name = name
		if s.Color == (Color{}) {
			s.Color = colorFor(name)
		}
		c.byCode[s.Code] = s
		c.sources = append(c.sources, s)
	}
	return c, nil
}

// Sources returns the known sites in catalog order.
func (c *Catalog) Sources() []Source {
	out := make([]Source, len(c.sources))
	copy(out, c.sources)
	return out
}

// Lookup returns the known source for a site code.
func (c *Catalog) Lookup(code int) (Source, bool) {
	s, ok := c.byCode[code]
	return s, ok
}

// Label returns the display name of a site code, or Others.
func (c *Catalog) Label(code int) string {
	if s, ok := c.byCode[code]; ok {
		return s.Name
	}
	return OthersLabel
}

// Annotate sets Source on every record from its site code.
func (c *Catalog) Annotate(records []models.HotelRecord) {
	for i := range records {
		records[i].Source = c.Label(records[i].Site)
	}
}

// OthersColor and MultipleColor are the colors of the synthetic groups.
func OthersColor() Color   { return othersColor }
func MultipleColor() Color { return multipleColor }

func colorFor(name string) Color {
	if c, ok := knownColors[name]; ok {
		return c
	}
	return defaultColor
}
