package sources

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/sudorandom/quake-stencil/pkg/feed"
)

// ParseSites reads name,lat,lon,category rows. The header row is optional.
func ParseSites(r io.Reader) ([]feed.Site, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	var sites []feed.Site
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return sites, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading site row %d: %w", line, err)
		}
		if len(rec) < 3 {
			continue
		}
		lat, err1 := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		lon, err2 := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if err1 != nil || err2 != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("site row %d: bad coordinates %q,%q", line, rec[1], rec[2])
		}
		cat := feed.SiteCultural
		if len(rec) > 3 {
			switch strings.ToLower(strings.TrimSpace(rec[3])) {
			case "natural":
				cat = feed.SiteNatural
			case "mixed":
				cat = feed.SiteMixed
			}
		}
		sites = append(sites, feed.Site{
			Feature:  feed.Feature{ID: uuid.New(), Lat: lat, Lon: lon, Label: strings.TrimSpace(rec[0])},
			Category: cat,
		})
	}
}
