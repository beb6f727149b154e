package hue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectDurationAnchors(t *testing.T) {
	cases := []struct {
		seconds float64
		want    uint16
	}{
		{300, 145},
		{600, 125},
		{3600, 62},
	}
	for _, c := range cases {
		got := FromSeconds(c.seconds)
		assert.InDelta(t, c.want, got, 6, "seconds=%v", c.seconds)
	}
}

func TestEffectDurationMonotonic(t *testing.T) {
	prev := FromSeconds(1)
	for s := 2.0; s < 21600; s += 37 {
		v := FromSeconds(s)
		assert.LessOrEqualf(t, v, prev, "value increased at %v seconds", s)
		prev = v
	}
}
