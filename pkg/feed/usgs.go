package feed

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	geojson "github.com/paulmach/go.geojson"
)

// ParseUSGS decodes a USGS earthquake summary feed (a GeoJSON feature
// collection). Features without a point geometry or a code are skipped.
// Each decoded event gets a fresh opaque id; the code carries identity.
func ParseUSGS(r io.Reader) ([]Event, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	events := make([]Event, 0, len(fc.Features))
	for _, f := range fc.Features {
		e, ok := eventFromFeature(f)
		if !ok {
			continue
		}
		events = append(events, e)
	}
	return events, nil
}

func eventFromFeature(f *geojson.Feature) (Event, bool) {
	if f == nil || f.Geometry == nil || !f.Geometry.IsPoint() || len(f.Geometry.Point) < 2 {
		return Event{}, false
	}
	code := featureCode(f)
	if code == "" {
		return Event{}, false
	}

	mag := f.PropertyMustFloat64("mag", 0)
	ms := int64(f.PropertyMustFloat64("time", 0))
	place := f.PropertyMustString("place", "")

	e := Event{
		Feature: Feature{
			ID:     uuid.New(),
			Lat:    f.Geometry.Point[1],
			Lon:    f.Geometry.Point[0],
			Weight: mag,
			Label:  place,
		},
		Code:              code,
		Time:              time.UnixMilli(ms).UTC(),
		GreatestMagnitude: mag,
		Place:             place,
	}
	if len(f.Geometry.Point) > 2 {
		e.Depth = f.Geometry.Point[2]
	}
	return e, true
}

// featureCode prefers the feature id, then the network+code properties.
func featureCode(f *geojson.Feature) string {
	if id, ok := f.ID.(string); ok && id != "" {
		return id
	}
	code := f.PropertyMustString("code", "")
	if code == "" {
		ids := strings.Trim(f.PropertyMustString("ids", ""), ",")
		if i := strings.IndexByte(ids, ','); i >= 0 {
			ids = ids[:i]
		}
		return ids
	}
	return f.PropertyMustString("net", "") + code
}
