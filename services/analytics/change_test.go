package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentChange(t *testing.T) {
	tests := []struct {
		name      string
		cur, prev float64
		want      float64
	}{
		{"both zero", 0, 0, 0},
		{"zero baseline", 42, 0, 100},
		{"negative from zero baseline", -3, 0, 100},
		{"growth", 150, 100, 50},
		{"drop", 50, 100, -50},
		{"rounded to one decimal", 2, 3, -33.3},
		{"rounds half away from zero", 1.0005, 1, 0.1},
		{"third", 4, 3, 33.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PercentChange(tt.cur, tt.prev))
		})
	}
}
