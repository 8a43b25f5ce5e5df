package osmparser

import (
	"github.com/k0kubun/go-ansi"
	"github.com/paulmach/osm"
	"github.com/schollz/progressbar/v3"
)

var skipHighway = map[string]struct{}{
	"footway":        {},
	"construction":   {},
	"cycleway":       {},
	"path":           {},
	"pedestrian":     {},
	"busway":         {},
	"steps":          {},
	"bridleway":      {},
	"corridor":       {},
	"street_lamp":    {},
	"bus_stop":       {},
	"crossing":       {},
	"elevator":       {},
	"escape":         {},
	"give_way":       {},
	"milestone":      {},
	"passing_place":  {},
	"platform":       {},
	"proposed":       {},
	"raceway":        {},
	"rest_area":      {},
	"speed_camera":   {},
	"track":          {},
	"bus_guideway":   {},
	"services":       {},
	"traffic_island": {},
}

func acceptOsmWay(way *osm.Way) bool {
	highway := way.Tags.Find("highway")
	if highway == "" {
		return false
	}
	if _, skip := skipHighway[highway]; skip {
		return false
	}
	if way.Tags.Find("area") == "yes" {
		return false
	}
	return true
}

func RoadTypeMaxSpeed(roadType string) float64 {
	switch roadType {
	case "motorway":
		return 95
	case "trunk":
		return 85
	case "primary":
		return 75
	case "secondary":
		return 65
	case "tertiary":
		return 50
	case "unclassified":
		return 50
	case "residential":
		return 30
	case "service":
		return 20
	case "motorway_link":
		return 60
	case "trunk_link":
		return 55
	case "primary_link":
		return 50
	case "secondary_link":
		return 40
	case "tertiary_link":
		return 35
	case "living_street":
		return 10
	case "road":
		return 30
	default:
		return 25
	}
}

func newParserBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(15),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
