package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPrice(t *testing.T) {
	cases := []struct {
		name   string
		amount float64
		opts   []FormatOption
		want   string
	}{
		{name: "rounds down", amount: 1108.08, want: "£1,108"},
		{name: "rounds half up", amount: 2.5, want: "£3"},
		{name: "groups millions", amount: 1234567.49, want: "£1,234,567"},
		{name: "under a thousand", amount: 923.4, want: "£923"},
		{name: "negative half rounds away from zero", amount: -2.5, want: "£-3"},
		{name: "without symbol", amount: 6316.06, opts: []FormatOption{WithoutSymbol()}, want: "6,316"},
		{name: "zero", amount: 0, want: "£0"},
		{name: "not a number", amount: math.NaN(), want: "£0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatPrice(tc.amount, tc.opts...))
		})
	}
}
