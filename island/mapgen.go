package island

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/pthm-cable/biosim/components"
)

// Elevation and dryness cut-offs for generated maps.
const (
	seaLevel      = 0.35
	highlandLevel = 0.62
	desertDryness = 0.35
	noiseScale    = 0.18
)

// GenerateMap returns a random geography string of the given size. The
// outline comes from Perlin elevation with a falloff towards the edges; the
// border is always water. The same seed gives the same map.
func GenerateMap(rows, cols int, seed int64) (string, error) {
	if rows < 3 || cols < 3 {
		return "", fmt.Errorf("map must be at least 3x3, got %dx%d", rows, cols)
	}
	elevation := newPerlin(seed)
	dryness := newPerlin(seed + 1)

	var b strings.Builder
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			t := components.Water
			if r > 0 && c > 0 && r < rows-1 && c < cols-1 {
				x, y := float64(c)*noiseScale, float64(r)*noiseScale
				// Square falloff keeps land away from the border.
				dx := 2*float64(c)/float64(cols-1) - 1
				dy := 2*float64(r)/float64(rows-1) - 1
				d := math.Max(math.Abs(dx), math.Abs(dy))
				e := 0.5 + 0.5*elevation.fbm(x, y, 3) - 0.55*d*d + 0.2
				switch {
				case e < seaLevel:
					t = components.Water
				case dryness.noise(x+40, y+40) > desertDryness:
					t = components.Desert
				case e < highlandLevel:
					t = components.Lowland
				default:
					t = components.Highland
				}
			}
			b.WriteByte(t.Code())
		}
		if r < rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

// perlin generates coherent 2D noise in roughly [-1, 1].
type perlin struct {
	perm [512]int
}

func newPerlin(seed int64) *perlin {
	p := &perlin{}
	rng := rand.New(rand.NewSource(seed))

	var perm [256]int
	for i := range perm {
		perm[i] = i
	}
	for i := len(perm) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}
	for i := 0; i < 256; i++ {
		p.perm[i] = perm[i]
		p.perm[i+256] = perm[i]
	}
	return p
}

func (p *perlin) noise(x, y float64) float64 {
	X := int(math.Floor(x)) & 255
	Y := int(math.Floor(y)) & 255
	x -= math.Floor(x)
	y -= math.Floor(y)
	u, v := fade(x), fade(y)

	a := p.perm[X] + Y
	b := p.perm[X+1] + Y
	return lerp(v,
		lerp(u, grad2D(p.perm[a], x, y), grad2D(p.perm[b], x-1, y)),
		lerp(u, grad2D(p.perm[a+1], x, y-1), grad2D(p.perm[b+1], x-1, y-1)))
}

// fbm sums octaves of noise at doubling frequency and halving amplitude.
func (p *perlin) fbm(x, y float64, octaves int) float64 {
	var sum, amp, norm float64 = 0, 1, 0
	for i := 0; i < octaves; i++ {
		sum += amp * p.noise(x, y)
		norm += amp
		x, y, amp = x*2, y*2, amp/2
	}
	return sum / norm
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

func grad2D(hash int, x, y float64) float64 {
	switch hash & 3 {
	case 0:
		return x + y
	case 1:
		return -x + y
	case 2:
		return x - y
	}
	return -x - y
}
