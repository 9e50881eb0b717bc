// Package sources knows where reference data and feeds live and how to turn
// them into feed features.
package sources

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/sudorandom/quake-stencil/pkg/feed"
	"github.com/sudorandom/quake-stencil/pkg/utils"
)

var errMissingColumn = errors.New("missing column")

// column aliases cover both the dr5hn and simplemaps city dumps.
var cityColumns = map[string][]string{
	"name":       {"name", "city_ascii", "city"},
	"lat":        {"latitude", "lat"},
	"lon":        {"longitude", "lng", "lon"},
	"country":    {"country_code", "iso2"},
	"population": {"population"},
}

func columnIndex(header []string) (map[string]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.ToLower(strings.TrimSpace(h))] = i
	}
	idx := make(map[string]int, len(cityColumns))
	for key, aliases := range cityColumns {
		idx[key] = -1
		for _, a := range aliases {
			if i, ok := pos[a]; ok {
				idx[key] = i
				break
			}
		}
	}
	for _, required := range []string{"name", "lat", "lon"} {
		if idx[required] < 0 {
			return nil, fmt.Errorf("%w: %s", errMissingColumn, required)
		}
	}
	return idx, nil
}

// ParseCities reads a header-led city CSV. Rows with unparsable coordinates
// or below minPopulation are skipped; rows with no population column are
// always kept.
func ParseCities(r io.Reader, minPopulation int) ([]feed.City, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading city header: %w", err)
	}
	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}
	field := func(rec []string, key string) string {
		i := idx[key]
		if i < 0 || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var cities []feed.City
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading city row: %w", err)
		}
		lat, err1 := strconv.ParseFloat(field(rec, "lat"), 64)
		lon, err2 := strconv.ParseFloat(field(rec, "lon"), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		pop, _ := strconv.ParseFloat(field(rec, "population"), 64)
		if idx["population"] >= 0 && int(pop) < minPopulation {
			continue
		}
		cities = append(cities, feed.City{
			Feature: feed.Feature{
				ID:     uuid.New(),
				Lat:    lat,
				Lon:    lon,
				Weight: pop,
				Label:  field(rec, "name"),
			},
			Country:    strings.ToUpper(field(rec, "country")),
			Population: int(pop),
		})
	}
	return cities, nil
}

// FetchCities downloads (once) and parses the world city list.
func FetchCities(url string, minPopulation int) ([]feed.City, error) {
	r, err := utils.GetCachedReader(url, true, "[CITIES]")
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return ParseCities(r, minPopulation)
}
