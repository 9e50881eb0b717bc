package stencil

import (
	"fmt"
	"strings"
)

// Stage identifies one overlay pass.
type Stage int

const (
	StageRegions Stage = iota
	StageGridLines
	StageSites
	StageCityNames
	StageMagnitudes
)

// CanonicalOrder is the only order stages ever run in.
var CanonicalOrder = []Stage{
	StageRegions,
	StageGridLines,
	StageSites,
	StageCityNames,
	StageMagnitudes,
}

var stageNames = [...]string{"regions", "gridlines", "sites", "citynames", "magnitudes"}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

func (s Stage) Valid() bool {
	return s >= StageRegions && s <= StageMagnitudes
}

func ParseStage(name string) (Stage, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range stageNames {
		if n == name {
			return Stage(i), nil
		}
	}
	return 0, fmt.Errorf("unknown stage %q", name)
}

// ParseStages parses a comma separated stage list.
func ParseStages(list string) ([]Stage, error) {
	var out []Stage
	for _, part := range strings.Split(list, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		s, err := ParseStage(part)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Normalize turns a caller's stage selection into the run order: duplicates
// and unknown values are dropped and the rest sorted canonically.
func Normalize(requested []Stage) []Stage {
	want := make(map[Stage]bool, len(requested))
	for _, s := range requested {
		want[s] = true
	}
	out := make([]Stage, 0, len(want))
	for _, s := range CanonicalOrder {
		if want[s] {
			out = append(out, s)
		}
	}
	return out
}
