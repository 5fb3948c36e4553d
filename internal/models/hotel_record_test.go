package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestHotelRecord_AutoMatched(t *testing.T) {
	tests := []struct {
		name    string
		comment *string
		want    bool
	}{
		{name: "nil comment", comment: nil, want: false},
		{name: "empty comment", comment: strPtr(""), want: false},
		{name: "whitespace comment", comment: strPtr("   "), want: false},
		{name: "stringified null", comment: strPtr("None"), want: false},
		{name: "annotated", comment: strPtr("name+geo score 0.97"), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := HotelRecord{AutomatchComment: tt.comment}
			assert.Equal(t, tt.want, r.AutoMatched())
		})
	}
}

func TestHotelRecord_PointUsesLonLatOrder(t *testing.T) {
	r := HotelRecord{Lat: 10.5, Lon: 20.25}
	p := r.Point()

	assert.Equal(t, 20.25, p.Lon())
	assert.Equal(t, 10.5, p.Lat())
}

func TestAnnotatedRecord_JSONFlattensRecord(t *testing.T) {
	created := time.Date(2022, 5, 1, 12, 0, 0, 0, time.UTC)
	rec := AnnotatedRecord{
		HotelRecord: HotelRecord{
			QL2ID:         100,
			Site:          33,
			HotelName:     "Harbour View",
			Geobox:        "G1",
			Source:        "Booking",
			CreationTime:  created,
			AutomatchFlag: true,
		},
		Distance: 42,
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, float64(100), decoded["ql2_id"])
	assert.Equal(t, float64(42), decoded["distance"])
	assert.Equal(t, "Booking", decoded["source"])
	assert.Equal(t, true, decoded["automatch_flg"])
	assert.NotContains(t, decoded, "last_match_date")
}
