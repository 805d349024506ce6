package quantize

// matcher memoizes nearest-entry lookups per exact color.
type matcher struct {
	pal   Palette
	cache map[uint32]uint8
}

func newMatcher(p Palette) *matcher {
	return &matcher{pal: p, cache: make(map[uint32]uint8, 1024)}
}

func (m *matcher) nearest(v uint32) uint8 {
	if i, ok := m.cache[v]; ok {
		return i
	}
	c := unpack(v)
	best, bestD := 0, -1
	for i, p := range m.pal {
		d := distance(c, p)
		if bestD < 0 || d < bestD {
			best, bestD = i, d
			if d == 0 {
				break
			}
		}
	}
	m.cache[v] = uint8(best)
	return uint8(best)
}

// distance is squared RGB distance weighted 2:4:3, a cheap approximation of
// perceived difference.
func distance(a, b RGB) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return 2*dr*dr + 4*dg*dg + 3*db*db
}
