package priceconfig

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Entry is one named option with its price (or, in the discount section, its percentage).
type Entry struct {
	Name  string
	Price float64
}

// Table is an ordered price mapping. Its JSON form is an object whose key order is kept,
// so "the first discount entry" means the same thing on every round trip.
type Table []Entry

// Lookup returns the price for name and whether it exists.
func (t Table) Lookup(name string) (float64, bool) {
	for _, e := range t {
		if e.Name == name {
			return e.Price, true
		}
	}
	return 0, false
}

// Names returns the option names in order.
func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for _, e := range t {
		names = append(names, e.Name)
	}
	return names
}

// Map flattens the table for lookups by key.
func (t Table) Map() map[string]float64 {
	m := make(map[string]float64, len(t))
	for _, e := range t {
		m[e.Name] = e.Price
	}
	return m
}

func (t Table) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range t {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(e.Price)
		if err != nil {
			return nil, fmt.Errorf("price for %q: %w", e.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (t *Table) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("price table must be a JSON object")
	}

	out := Table{}
	index := map[string]int{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)

		var raw any
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		price, err := parsePrice(raw)
		if err != nil {
			return fmt.Errorf("price for %q: %w", name, err)
		}

		if i, dup := index[name]; dup {
			out[i].Price = price
			continue
		}
		index[name] = len(out)
		out = append(out, Entry{Name: name, Price: price})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	*t = out
	return nil
}

func parsePrice(raw any) (float64, error) {
	var value float64
	switch v := raw.(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, err
		}
		value = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", v)
		}
		value = f
	default:
		return 0, fmt.Errorf("must be a number")
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("must be finite")
	}
	return value, nil
}
