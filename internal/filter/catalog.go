package filter

import "fmt"

// Normal is the id of the identity filter.
const Normal = "normal"

var catalog = []Definition{
	{ID: Normal, Name: "Normal"},
	{ID: "noir", Name: "Noir", Ops: []Op{
		{Grayscale, 1}, {Contrast, 1.2},
	}},
	{ID: "vintage", Name: "Sepia", Ops: []Op{
		{Sepia, 0.8}, {Contrast, 0.9},
	}},
	{ID: "1977", Name: "1977", Ops: []Op{
		{Sepia, 0.5}, {HueRotate, -30}, {Saturate, 1.4},
	}},
	{ID: "cyber", Name: "Cyber", Ops: []Op{
		{Saturate, 2}, {Contrast, 1.2}, {HueRotate, 180},
	}},
	{ID: "dramatic", Name: "Drama", Ops: []Op{
		{Contrast, 1.5}, {Brightness, 0.9}, {Grayscale, 0.4},
	}},
	{ID: "golden", Name: "Golden", Ops: []Op{
		{Brightness, 1.1}, {Saturate, 1.4}, {Sepia, 0.3},
	}},
}

var byID = func() map[string]Definition {
	m := make(map[string]Definition, len(catalog))
	for _, d := range catalog {
		m[d.ID] = d
	}
	return m
}()

// All returns the catalog in display order.
func All() []Definition {
	out := make([]Definition, len(catalog))
	copy(out, catalog)
	return out
}

// Get looks up a filter by id. The empty id and "none" mean Normal.
func Get(id string) (Definition, error) {
	if id == "" || id == "none" {
		id = Normal
	}
	d, ok := byID[id]
	if !ok {
		return Definition{}, fmt.Errorf("%w %q", ErrUnknown, id)
	}
	return d, nil
}
