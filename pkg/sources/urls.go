package sources

import (
	"fmt"
	"time"

	"github.com/sudorandom/quake-stencil/pkg/feed"
)

const (
	WorldCitiesURL = "https://raw.githubusercontent.com/dr5hn/countries-states-cities-database/master/csv/cities.csv"
	LandGeoJSONURL = "https://raw.githubusercontent.com/nvkelso/natural-earth-vector/master/geojson/ne_110m_land.geojson"

	usgsSummaryURL = "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/%s_%s.geojson"
)

// FeedLevel is the minimum magnitude tier of a USGS summary feed.
type FeedLevel string

const (
	FeedAll         FeedLevel = "all"
	FeedSignificant FeedLevel = "significant"
	FeedM1          FeedLevel = "1.0"
	FeedM25         FeedLevel = "2.5"
	FeedM45         FeedLevel = "4.5"
)

// USGSFeedURL returns the smallest summary feed that still covers the
// recency window.
func USGSFeedURL(level FeedLevel, r feed.Recency) string {
	period := "month"
	switch w := r.Window(); {
	case w <= 24*time.Hour:
		period = "day"
	case w <= 7*24*time.Hour:
		period = "week"
	}
	return fmt.Sprintf(usgsSummaryURL, level, period)
}
