package quantize

import (
	"math"
	"sort"
)

const histBits = 5

type bucket struct {
	key              uint16 // rrrrrgggggbbbbb
	count            int
	sumR, sumG, sumB int
}

func (b bucket) channel(ch int) int {
	return int(b.key>>(uint(2-ch)*histBits)) & (1<<histBits - 1)
}

// buildHistogram bins pixels at 5 bits per channel and returns the
// non-empty bins in key order.
func buildHistogram(px []uint32) []bucket {
	var bins [1 << (3 * histBits)]bucket
	for _, v := range px {
		r, g, b := int(v>>16&0xFF), int(v>>8&0xFF), int(v&0xFF)
		k := uint16(r>>3<<10 | g>>3<<5 | b>>3)
		e := &bins[k]
		e.count++
		e.sumR += r
		e.sumG += g
		e.sumB += b
	}
	out := make([]bucket, 0, 4096)
	for k := range bins {
		if bins[k].count > 0 {
			e := bins[k]
			e.key = uint16(k)
			out = append(out, e)
		}
	}
	return out
}

type box struct {
	entries []bucket
	count   int
	lo, hi  [3]int
}

func newBox(entries []bucket) *box {
	b := &box{entries: entries, lo: [3]int{31, 31, 31}}
	for _, e := range entries {
		b.count += e.count
		for ch := 0; ch < 3; ch++ {
			v := e.channel(ch)
			b.lo[ch] = min(b.lo[ch], v)
			b.hi[ch] = max(b.hi[ch], v)
		}
	}
	return b
}

// longest returns the channel with the widest extent; ties prefer green,
// then red, then blue, the order of perceived sensitivity.
func (b *box) longest() (int, int) {
	best, span := 1, b.hi[1]-b.lo[1]
	for _, ch := range []int{0, 2} {
		if s := b.hi[ch] - b.lo[ch]; s > span {
			best, span = ch, s
		}
	}
	return best, span
}

func (b *box) score() float64 {
	if len(b.entries) < 2 {
		return -1
	}
	_, span := b.longest()
	return float64(b.count) * float64(span)
}

// split cuts the box at the population median of its longest channel.
func (b *box) split() (*box, *box) {
	ch, _ := b.longest()
	sort.SliceStable(b.entries, func(i, j int) bool {
		vi, vj := b.entries[i].channel(ch), b.entries[j].channel(ch)
		if vi != vj {
			return vi < vj
		}
		return b.entries[i].key < b.entries[j].key
	})

	half := b.count / 2
	acc, cut := 0, 1
	for i, e := range b.entries {
		acc += e.count
		if acc >= half {
			cut = i + 1
			break
		}
	}
	if cut >= len(b.entries) {
		cut = len(b.entries) - 1
	}
	if cut < 1 {
		cut = 1
	}
	return newBox(b.entries[:cut]), newBox(b.entries[cut:])
}

func (b *box) mean() RGB {
	var r, g, bl int
	for _, e := range b.entries {
		r += e.sumR
		g += e.sumG
		bl += e.sumB
	}
	n := float64(b.count)
	return RGB{
		uint8(math.Round(float64(r) / n)),
		uint8(math.Round(float64(g) / n)),
		uint8(math.Round(float64(bl) / n)),
	}
}

func medianCut(hist []bucket, limit int) Palette {
	boxes := []*box{newBox(hist)}
	for len(boxes) < limit {
		pick, best := -1, 0.0
		for i, b := range boxes {
			if s := b.score(); s > best {
				pick, best = i, s
			}
		}
		if pick < 0 {
			break
		}
		l, r := boxes[pick].split()
		boxes[pick] = l
		boxes = append(boxes, r)
	}

	pal := make(Palette, 0, len(boxes))
	seen := make(map[RGB]struct{}, len(boxes))
	for _, b := range boxes {
		c := b.mean()
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		pal = append(pal, c)
	}
	return pal
}
