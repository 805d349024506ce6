package effect

var catalog = []Definition{
	{ID: "none", Name: "None", Kind: None},
	{ID: "vignette", Name: "Vignette", Kind: Vignette, Darkness: 0.8},
	{ID: "grain", Name: "Grain", Kind: Grain, Strength: 0.08, Seed: 0x6d6f6d656e746f},
	// Warm light leak from the bottom-left corner.
	{ID: "leak", Name: "Leak", Kind: Tint, Angle: 45, Blend: Screen, Stops: []Stop{
		{Pos: 0, Color: Hex("#ff0000"), Alpha: 0.2},
		{Pos: 0.7, Color: Hex("#ff0000"), Alpha: 0},
	}},
	{ID: "rainbow", Name: "Prism", Kind: Tint, Angle: 90, Blend: Normal, Stops: []Stop{
		{Pos: 0, Color: Hex("#ff0000"), Alpha: 0.1},
		{Pos: 0.5, Color: Hex("#00ff00"), Alpha: 0.1},
		{Pos: 1, Color: Hex("#0000ff"), Alpha: 0.1},
	}},
	{ID: "blur", Name: "Soft", Kind: Blur, Sigma: 2},
}

var byID = func() map[string]Definition {
	m := make(map[string]Definition, len(catalog))
	for _, d := range catalog {
		m[d.ID] = d
	}
	return m
}()
