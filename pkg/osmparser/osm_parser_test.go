package osmparser

import (
	"testing"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
)

func wayWithTags(tags map[string]string) *osm.Way {
	way := &osm.Way{}
	for k, v := range tags {
		way.Tags = append(way.Tags, osm.Tag{Key: k, Value: v})
	}
	return way
}

func TestAcceptOsmWay(t *testing.T) {
	assert.True(t, acceptOsmWay(wayWithTags(map[string]string{"highway": "residential"})))
	assert.False(t, acceptOsmWay(wayWithTags(map[string]string{"highway": "footway"})))
	assert.False(t, acceptOsmWay(wayWithTags(map[string]string{"building": "yes"})))
	assert.False(t, acceptOsmWay(wayWithTags(map[string]string{"highway": "residential", "area": "yes"})))
}

func TestGetMaxSpeedOneWay(t *testing.T) {
	speed, oneWay, reversed := getMaxSpeedOneWay(wayWithTags(map[string]string{
		"highway":  "primary",
		"maxspeed": "80",
		"oneway":   "yes",
	}))
	assert.Equal(t, 80.0, speed)
	assert.True(t, oneWay)
	assert.False(t, reversed)

	speed, oneWay, reversed = getMaxSpeedOneWay(wayWithTags(map[string]string{
		"highway": "residential",
		"oneway":  "-1",
	}))
	assert.Equal(t, RoadTypeMaxSpeed("residential"), speed)
	assert.True(t, oneWay)
	assert.True(t, reversed)

	_, oneWay, _ = getMaxSpeedOneWay(wayWithTags(map[string]string{
		"highway": "residential",
		"oneway":  "no",
	}))
	assert.False(t, oneWay)

	// roundabouts are implicitly one way
	_, oneWay, _ = getMaxSpeedOneWay(wayWithTags(map[string]string{
		"highway":  "tertiary",
		"junction": "roundabout",
	}))
	assert.True(t, oneWay)
}

func TestParseMaxSpeed(t *testing.T) {
	assert.Equal(t, 50.0, parseMaxSpeed("50"))
	assert.InDelta(t, 48.28, parseMaxSpeed("30 mph"), 0.01)
	assert.Equal(t, 0.0, parseMaxSpeed("walk"))
}

func TestRoadTypeMaxSpeed(t *testing.T) {
	assert.Equal(t, 95.0, RoadTypeMaxSpeed("motorway"))
	assert.Equal(t, 30.0, RoadTypeMaxSpeed("residential"))
	assert.Equal(t, 25.0, RoadTypeMaxSpeed("something_else"))
}
