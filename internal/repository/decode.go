package repository

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/spf13/cast"

	"github.com/stwalsh4118/hotelmatch/internal/models"
)

// Warehouse column names.
const (
	colQL2ID            = "ql2_id"
	colSite             = "site"
	colPropertyID       = "property_id"
	colHotelName        = "hotel_name"
	colCreationTime     = "creation_time"
	colLatitude         = "latitude"
	colLongitude        = "longitude"
	colGeobox           = "geobox"
	colLastMatchDate    = "last_match_date"
	colAutomatchComment = "automatch_comment"
)

var columns = []string{
	colQL2ID, colSite, colPropertyID, colHotelName, colCreationTime,
	colLatitude, colLongitude, colGeobox, colLastMatchDate, colAutomatchComment,
}

var errNull = errors.New("value is null")

// DecodeError names the column that made a row unusable.
type DecodeError struct {
	Column string
	Reason string
}

// Error implements error.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("column %s: %s", e.Column, e.Reason)
}

func reject(column string, err error) *DecodeError {
	return &DecodeError{Column: column, Reason: err.Error()}
}

// decodeRow maps a warehouse row, looked up by column name, onto a record.
// A null site decodes as 0. Coordinates must be finite and in range.
func decodeRow(get func(column string) any) (models.HotelRecord, *DecodeError) {
	var rec models.HotelRecord

	id, err := toInt64(get(colQL2ID))
	if err != nil {
		return rec, reject(colQL2ID, err)
	}
	rec.QL2ID = id

	if v := get(colSite); v != nil {
		site, err := toInt64(v)
		if err != nil {
			return rec, reject(colSite, err)
		}
		rec.Site = int(site)
	}

	if rec.PropertyID, err = toText(get(colPropertyID)); err != nil {
		return rec, reject(colPropertyID, err)
	}
	if rec.HotelName, err = toText(get(colHotelName)); err != nil {
		return rec, reject(colHotelName, err)
	}

	if v := get(colCreationTime); v != nil {
		if rec.CreationTime, err = toTime(v); err != nil {
			return rec, reject(colCreationTime, err)
		}
	}

	if rec.Lat, err = toCoordinate(get(colLatitude), 90); err != nil {
		return rec, reject(colLatitude, err)
	}
	if rec.Lon, err = toCoordinate(get(colLongitude), 180); err != nil {
		return rec, reject(colLongitude, err)
	}

	geobox, err := toText(get(colGeobox))
	if err == nil && strings.TrimSpace(geobox) == "" {
		err = errors.New("geobox is empty")
	}
	if err != nil {
		return rec, reject(colGeobox, err)
	}
	rec.Geobox = geobox

	if v := get(colLastMatchDate); v != nil {
		t, err := toTime(v)
		if err != nil {
			return rec, reject(colLastMatchDate, err)
		}
		rec.LastMatchDate = &t
	}

	if v := get(colAutomatchComment); v != nil {
		comment, err := toText(v)
		if err != nil {
			return rec, reject(colAutomatchComment, err)
		}
		rec.AutomatchComment = &comment
	}

	return rec, nil
}

func toInt64(v any) (int64, error) {
	switch x := v.(type) {
	case nil:
		return 0, errNull
	case pgtype.Numeric:
		n, err := x.Int64Value()
		if err != nil {
			return 0, err
		}
		if !n.Valid {
			return 0, errNull
		}
		return n.Int64, nil
	case string:
		if strings.TrimSpace(x) == "" {
			return 0, errors.New("value is empty")
		}
		return cast.ToInt64E(strings.TrimSpace(x))
	}
	return cast.ToInt64E(v)
}

func toFloat64(v any) (float64, error) {
	switch x := v.(type) {
	case nil:
		return 0, errNull
	case pgtype.Numeric:
		f, err := x.Float64Value()
		if err != nil {
			return 0, err
		}
		if !f.Valid {
			return 0, errNull
		}
		return f.Float64, nil
	case string:
		if strings.TrimSpace(x) == "" {
			return 0, errors.New("value is empty")
		}
		return cast.ToFloat64E(strings.TrimSpace(x))
	}
	return cast.ToFloat64E(v)
}

func toCoordinate(v any, limit float64) (float64, error) {
	f, err := toFloat64(v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%v is not finite", f)
	}
	if f < -limit || f > limit {
		return 0, fmt.Errorf("%v is outside [-%v, %v]", f, limit, limit)
	}
	return f, nil
}

func toText(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	return cast.ToStringE(v)
}

func toTime(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case pgtype.Timestamp:
		if !x.Valid {
			return time.Time{}, errNull
		}
		return x.Time, nil
	case pgtype.Date:
		if !x.Valid {
			return time.Time{}, errNull
		}
		return x.Time, nil
	}
	return cast.ToTimeE(v)
}
