package stencil

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"
	"time"

	"github.com/biter777/countries"

	"github.com/sudorandom/quake-stencil/pkg/feed"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestRenderer(t *testing.T, mutate func(*Options)) *Renderer {
	t.Helper()
	opts := DefaultOptions()
	opts.Now = func() time.Time { return testNow }
	if mutate != nil {
		mutate(&opts)
	}
	r, err := NewRenderer(opts)
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}
	return r
}

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

var ocean = color.RGBA{10, 40, 120, 255}

func TestNewRaster(t *testing.T) {
	if _, err := NewRaster(360, 180); err != nil {
		t.Errorf("NewRaster(360, 180) failed: %v", err)
	}
	for _, dims := range [][2]int{{0, 0}, {100, 100}, {360, 181}, {-2, -1}} {
		if _, err := NewRaster(dims[0], dims[1]); !errors.Is(err, ErrBadDimensions) {
			t.Errorf("NewRaster(%d, %d) error = %v; want ErrBadDimensions", dims[0], dims[1], err)
		}
	}
}

func TestClone(t *testing.T) {
	src := solid(4, 2, ocean)
	cp := Clone(src)
	cp.Set(0, 0, color.White)
	if src.At(0, 0) != ocean {
		t.Error("Clone shares pixels with its source")
	}
}

func TestFontSize(t *testing.T) {
	tests := []struct {
		name                                 string
		base, scale, ratio, mult, lat, bonus float64
		want                                 float64
	}{
		{"equator", 16, 1, 1, 1, 0, 12, 16},
		{"pole bonus", 16, 1, 1, 1, -90, 12, 28},
		{"scaled", 32, 2, 0.5, 2, 45, 10, 69},
	}
	for _, tt := range tests {
		if got := FontSize(tt.base, tt.scale, tt.ratio, tt.mult, tt.lat, tt.bonus); got != tt.want {
			t.Errorf("%s: FontSize = %v; want %v", tt.name, got, tt.want)
		}
	}
}

func TestCategoryMultiplier(t *testing.T) {
	tests := []struct {
		kind  GlyphKind
		cat   Category
		width float64
		want  float64
	}{
		{GlyphCity, CategoryStandard, 3600, 2.0},
		{GlyphCity, CategoryStandard, 7200, 1.0},
		{GlyphCity, CategorySatellite, 3600, 0.8},
		{GlyphMagnitude, CategoryStandard, 3600, 2.0},
		{GlyphMagnitude, CategorySatellite, 3600, 1.0},
	}
	for _, tt := range tests {
		if got := CategoryMultiplier(tt.kind, tt.cat, tt.width); got != tt.want {
			t.Errorf("CategoryMultiplier(%v, %v, %v) = %v; want %v", tt.kind, tt.cat, tt.width, got, tt.want)
		}
	}
	if BaseFontSize(GlyphCity, 2) != 32 || BaseFontSize(GlyphCity, 1) != 16 || BaseFontSize(GlyphMagnitude, 1) != 24 {
		t.Error("unexpected base font sizes")
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize([]Stage{StageMagnitudes, StageGridLines, StageMagnitudes, Stage(42), StageRegions})
	want := []Stage{StageRegions, StageGridLines, StageMagnitudes}
	if len(got) != len(want) {
		t.Fatalf("Normalize = %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Normalize = %v; want %v", got, want)
		}
	}
	if len(Normalize(nil)) != 0 {
		t.Error("Normalize(nil) should be empty")
	}
}

func TestParseStages(t *testing.T) {
	got, err := ParseStages("magnitudes, GridLines,,regions")
	if err != nil {
		t.Fatalf("ParseStages failed: %v", err)
	}
	if len(got) != 3 || got[0] != StageMagnitudes || got[1] != StageGridLines || got[2] != StageRegions {
		t.Errorf("ParseStages = %v", got)
	}
	if _, err := ParseStages("grid,bogus"); err == nil {
		t.Error("expected error for unknown stage")
	}
	for _, s := range CanonicalOrder {
		back, err := ParseStage(s.String())
		if err != nil || back != s {
			t.Errorf("ParseStage(%q) = %v, %v", s.String(), back, err)
		}
	}
}

func TestGridLayout(t *testing.T) {
	r := newTestRenderer(t, nil)
	lines := r.gridLines(360, 180)
	if len(lines) != len(GridLatitudes)+len(GridLongitudes) {
		t.Fatalf("got %d lines; want %d", len(lines), len(GridLatitudes)+len(GridLongitudes))
	}
	var sawEquator, sawPrime, sawAnti bool
	for _, l := range lines {
		if l.thickness != 4 || l.dashed {
			t.Errorf("unexpected line %+v", l)
		}
		switch {
		case l.horizontal && l.at == 90:
			sawEquator = true
		case !l.horizontal && l.at == 180:
			sawPrime = true
		case !l.horizontal && l.at == 356:
			sawAnti = true
		}
	}
	if !sawEquator || !sawPrime || !sawAnti {
		t.Errorf("missing reference lines: equator=%v prime=%v anti=%v", sawEquator, sawPrime, sawAnti)
	}
}

func TestGridLayoutWallClockSatellite(t *testing.T) {
	r := newTestRenderer(t, func(o *Options) {
		o.HourMode = HourWallClock
		o.Category = CategorySatellite
	})
	lines := r.gridLines(360, 180)
	dashed := 0
	for _, l := range lines {
		if l.dashed {
			dashed++
			if l.thickness != 1 {
				t.Errorf("dashed thickness = %v; want 1", l.thickness)
			}
			if l.at+edgeMargin > 360 {
				t.Errorf("dashed line at %d touches the edge", l.at)
			}
		} else if l.thickness != 2 {
			t.Errorf("satellite thickness = %v; want 2", l.thickness)
		}
	}
	if dashed != 24 {
		t.Errorf("got %d hour lines; want 24", dashed)
	}
	if lines[0].at != 7 {
		t.Errorf("first hour line at %d; want 7", lines[0].at)
	}
}

func TestGridLinesDraws(t *testing.T) {
	r := newTestRenderer(t, nil)
	base := solid(360, 180, ocean)
	out := r.GridLines(base)
	if out.At(20, 90) == ocean {
		t.Error("equator pixel unchanged")
	}
	if out.At(20, 60) != ocean {
		t.Error("pixel away from any line changed")
	}
	if base.At(20, 90) != ocean {
		t.Error("GridLines mutated its input")
	}
}

func TestRegions(t *testing.T) {
	r := newTestRenderer(t, nil)
	base := solid(360, 180, ocean)
	regions := []feed.Region{
		{Name: "box", UpperLeft: feed.Point{Lat: 40, Lon: -20}, LowerRight: feed.Point{Lat: 20, Lon: 20}, Color: color.RGBA{255, 0, 0, 255}},
		{Name: "ignored", UpperLeft: feed.Point{Lat: -20, Lon: 100}, LowerRight: feed.Point{Lat: -40, Lon: 140}, Color: color.RGBA{255, 0, 0, 255}, Fallback: true},
	}
	out := r.Regions(base, regions)

	// Center of the first region: (lat 30, lon 0) -> (180, 60).
	got := color.RGBAModel.Convert(out.At(180, 60)).(color.RGBA)
	if got == ocean || got.R == 255 {
		t.Errorf("region pixel = %v; want a blend of ocean and red", got)
	}
	// Center of the fallback region: (lat -30, lon 120) -> (300, 120).
	if out.At(300, 120) != ocean {
		t.Error("fallback region was drawn")
	}

	rcs := regionRects(regions[0], 360, 180)
	if len(rcs) != 1 || rcs[0] != (rect{x: 160, y: 50, w: 40, h: 20}) {
		t.Errorf("regionRects = %+v", rcs)
	}
}

func TestRegionAcrossAntimeridian(t *testing.T) {
	r := newTestRenderer(t, nil)
	base := solid(360, 180, ocean)
	reg := feed.Region{Name: "pacific", UpperLeft: feed.Point{Lat: 10, Lon: 170}, LowerRight: feed.Point{Lat: -10, Lon: -170}, Color: color.RGBA{255, 0, 0, 255}}

	want := []rect{{x: 350, y: 80, w: 10, h: 20}, {x: 0, y: 80, w: 10, h: 20}}
	if got := regionRects(reg, 360, 180); len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("regionRects = %+v; want %+v", got, want)
	}

	out := r.Regions(base, []feed.Region{reg})
	for _, x := range []int{355, 5} {
		if out.At(x, 90) == ocean {
			t.Errorf("pixel (%d, 90) not shaded", x)
		}
	}
	if out.At(180, 90) != ocean {
		t.Error("region shaded the far side of the map")
	}
}

func TestRegionsOnlyFallback(t *testing.T) {
	r := newTestRenderer(t, nil)
	base := solid(360, 180, ocean)
	out := r.Regions(base, []feed.Region{{Fallback: true, UpperLeft: feed.Point{Lat: 10}, LowerRight: feed.Point{Lon: 10}}})
	if !bytes.Equal(out.Pix, base.Pix) {
		t.Error("fallback-only regions changed the raster")
	}
}

func TestEmptyStagesReturnInput(t *testing.T) {
	r := newTestRenderer(t, nil)
	base := solid(360, 180, ocean)
	for _, s := range []Stage{StageRegions, StageSites, StageCityNames, StageMagnitudes} {
		out := r.Apply(s, base, Features{})
		if !bytes.Equal(out.Pix, base.Pix) {
			t.Errorf("%v with no features changed the raster", s)
		}
		if out == base {
			t.Errorf("%v returned its input instead of a copy", s)
		}
	}
}

func TestSites(t *testing.T) {
	r := newTestRenderer(t, nil)
	base := solid(360, 180, ocean)
	out := r.Sites(base, []feed.Site{{Feature: feed.Feature{Lat: 0, Lon: 0}, Category: feed.SiteNatural}})
	// The triangle hangs above the anchor at (180, 90).
	if out.At(180, 87) == ocean {
		t.Error("site marker not drawn")
	}
	if base.At(180, 87) != ocean {
		t.Error("Sites mutated its input")
	}
}

func TestMagnitudeRecords(t *testing.T) {
	r := newTestRenderer(t, nil)
	recent := feed.NewEvent("recent", 0, 0, 6.25, testNow.Add(-time.Hour))
	old := feed.NewEvent("old", 45, 90, 4.5, testNow.Add(-72*time.Hour))
	cluster := feed.NewEvent("cluster", 0, 0, 4.0, testNow.Add(-time.Hour))
	cluster.Cluster = true
	cluster.GreatestMagnitude = 7.1234

	records := r.magnitudeRecords(3600, 1800, []feed.Event{recent, cluster, old})
	if len(records) != 3 {
		t.Fatalf("got %d records", len(records))
	}
	wantText := []string{"4.5", "6.25", "7.123"}
	for i, rec := range records {
		if rec.Text != wantText[i] {
			t.Errorf("record %d text = %q; want %q", i, rec.Text, wantText[i])
		}
	}
	if records[0].Outline != Black || records[1].Outline != Red {
		t.Errorf("outlines = %v, %v; want black then red", records[0].Outline, records[1].Outline)
	}
	// 24 * 1 * 1 * 2 + 45/90*10 + 4.5
	if records[0].Size != 57.5 {
		t.Errorf("old event size = %v; want 57.5", records[0].Size)
	}
	if records[0].X != 2700 || records[0].Y != 450 {
		t.Errorf("old event position = (%v, %v)", records[0].X, records[0].Y)
	}
}

func TestCityRecords(t *testing.T) {
	r := newTestRenderer(t, func(o *Options) { o.ScreenScale = 2 })
	cities := []feed.City{
		{Feature: feed.Feature{Label: "Quito", Lat: 0, Lon: -78.5}, Country: "EC"},
		{Feature: feed.Feature{Label: "Custom", Lat: 45, Lon: 10, Color: color.RGBA{1, 2, 3, 255}}},
	}
	records := r.cityRecords(3600, 1800, cities)
	if len(records) != 2 {
		t.Fatalf("got %d records", len(records))
	}
	// 32 * 2 * 1 * 2
	if records[0].Size != 128 {
		t.Errorf("Quito size = %v; want 128", records[0].Size)
	}
	if records[0].X != 1015+CityTextOffset || records[0].Y != 900 {
		t.Errorf("Quito position = (%v, %v)", records[0].X, records[0].Y)
	}
	if records[0].Fill != continentColors[countries.RegionSA] {
		t.Errorf("Quito color = %v; want the South America color", records[0].Fill)
	}
	if records[1].Fill != (color.RGBA{1, 2, 3, 255}) {
		t.Errorf("custom color lost: %v", records[1].Fill)
	}
	if records[1].Size != 128+6 {
		t.Errorf("Custom size = %v; want 134", records[1].Size)
	}
}

func TestSortByMagnitude(t *testing.T) {
	a := feed.NewEvent("a", 0, 0, 5, testNow)
	b := feed.NewEvent("b", 0, 0, 3, testNow)
	c := feed.NewEvent("c", 0, 0, 5, testNow)
	in := []feed.Event{a, b, c}
	got := SortByMagnitude(in)
	if got[0].Code != "b" || got[1].Code != "a" || got[2].Code != "c" {
		t.Errorf("SortByMagnitude order = %s %s %s", got[0].Code, got[1].Code, got[2].Code)
	}
	if in[0].Code != "a" {
		t.Error("SortByMagnitude reordered its input")
	}
}

func TestStageComposition(t *testing.T) {
	r := newTestRenderer(t, nil)
	base := solid(360, 180, ocean)
	f := Features{
		Events:  []feed.Event{feed.NewEvent("x", 10, 10, 5.5, testNow)},
		Regions: []feed.Region{{UpperLeft: feed.Point{Lat: 10, Lon: 10}, LowerRight: feed.Point{Lat: 0, Lon: 30}, Color: Red}},
	}
	first := r.Apply(StageMagnitudes, r.Apply(StageGridLines, r.Apply(StageRegions, base, f), f), f)
	second := r.Apply(StageMagnitudes, r.Apply(StageGridLines, r.Apply(StageRegions, base, f), f), f)
	if !bytes.Equal(first.Pix, second.Pix) {
		t.Error("repeating the same stages produced different rasters")
	}
}
