package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberIsLenient(t *testing.T) {
	cases := map[string]float64{
		`12.5`:    12.5,
		`"12.5"`:  12.5,
		`" 7 "`:   7,
		`""`:      0,
		`null`:    0,
		`"abc"`:   0,
		`true`:    0,
		`{"a":1}`: 0,
		`"1e400"`: 0,
		`-3`:      -3,
	}
	for raw, want := range cases {
		var n number
		require.NoError(t, json.Unmarshal([]byte(raw), &n), raw)
		assert.Equal(t, want, float64(n), raw)
	}
}

func TestQuotePayloadSingleItem(t *testing.T) {
	var p quotePayload
	require.NoError(t, json.Unmarshal([]byte(`{
		"customer_name": " Ana ",
		"location": "Kitchen",
		"product": "Roller Shades",
		"quantity": "2.9",
		"width_inch": "40"
	}`), &p))

	d := p.draft()
	assert.Equal(t, "Ana", d.Customer.Name)
	require.Len(t, d.Items, 1)
	assert.Equal(t, "Kitchen", d.Items[0].Location)
	assert.Equal(t, 2, d.Items[0].Quantity)
	assert.Equal(t, 40.0, d.Items[0].WidthInch)
}

func TestQuotePayloadItemsInheritLocation(t *testing.T) {
	var p quotePayload
	require.NoError(t, json.Unmarshal([]byte(`{
		"location": "Kitchen",
		"items": [{"product": "A"}, {"product": "B", "location": "Office"}]
	}`), &p))

	d := p.draft()
	require.Len(t, d.Items, 2)
	assert.Equal(t, "Kitchen", d.Items[0].Location)
	assert.Equal(t, "Office", d.Items[1].Location)
}

func TestQuotePayloadEmptyItemsStaysEmpty(t *testing.T) {
	var p quotePayload
	require.NoError(t, json.Unmarshal([]byte(`{"items": []}`), &p))
	assert.Empty(t, p.draft().Items)
}

func TestQuoteNumberFromFloat(t *testing.T) {
	valid := map[float64]int64{
		1:                  1,
		10001:              10001,
		9007199254740992.0: 9007199254740992,
	}
	for in, want := range valid {
		got, ok := quoteNumberFromFloat(in)
		assert.True(t, ok, "%v", in)
		assert.Equal(t, want, got)
	}

	for _, in := range []float64{0, -3, 0.5, 10001.5, 9223372036854775808, 1e19, 1e300} {
		_, ok := quoteNumberFromFloat(in)
		assert.False(t, ok, "%v", in)
	}
}
