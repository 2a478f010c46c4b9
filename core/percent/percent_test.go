package percent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentParsing(t *testing.T) {
	data := []struct {
		in   string
		want Percent
		ok   bool
	}{
		{"100%", 100, true},
		{" 150 ", 150, true},
		{"0%", 0, true},
		{"1001%", Natural, false},
		{"-5", Natural, false},
		{"wide", Natural, false},
	}
	for _, d := range data {
		p, err := FromString(d.in)
		if d.ok {
			assert.NoError(t, err, d.in)
		} else {
			assert.Error(t, err, d.in)
		}
		assert.Equal(t, d.want, p, d.in)
	}
}

func TestPercentString(t *testing.T) {
	assert.Equal(t, "120%", Percent(120).String())
	p, err := FromString(Natural.String())
	assert.NoError(t, err)
	assert.Equal(t, Natural, p)
	p, err = FromString(Max.String())
	assert.NoError(t, err)
	assert.Equal(t, Max, p)
}
