package dynamo

// Population owns the live bodies. Insertion order carries no meaning.
type Population struct {
	bodies []*Body
	max    int
}

// NewPopulation returns an empty population capped at max bodies. A
// non-positive max means no cap.
func NewPopulation(max int) *Population {
	return &Population{max: max}
}

func (p *Population) Len() int { return len(p.bodies) }
func (p *Population) Max() int { return p.max }

// Full reports whether another Add would be dropped.
func (p *Population) Full() bool {
	return p.max > 0 && len(p.bodies) >= p.max
}

// Add appends b. It returns false and drops b when the population is full.
func (p *Population) Add(b *Body) bool {
	if p.Full() {
		return false
	}
	p.bodies = append(p.bodies, b)
	return true
}

func (p *Population) At(i int) *Body {
	return p.bodies[i]
}

// Snapshot returns a copy of the body slice. Structures built from the
// snapshot index into it and stay valid even if the population grows.
func (p *Population) Snapshot() []*Body {
	s := make([]*Body, len(p.bodies))
	copy(s, p.bodies)
	return s
}

// SnapshotInto is Snapshot reusing dst's storage.
func (p *Population) SnapshotInto(dst []*Body) []*Body {
	return append(dst[:0], p.bodies...)
}

func (p *Population) Clear() {
	clear(p.bodies)
	p.bodies = p.bodies[:0]
}

// SetMax changes the cap and prunes the oldest bodies if needed. It returns
// the number of bodies removed.
func (p *Population) SetMax(max int) int {
	p.max = max
	if max <= 0 {
		return 0
	}
	return p.Prune(max)
}

// Prune drops the oldest bodies until at most n remain.
func (p *Population) Prune(n int) int {
	if n < 0 {
		n = 0
	}
	extra := len(p.bodies) - n
	if extra <= 0 {
		return 0
	}
	copy(p.bodies, p.bodies[extra:])
	clear(p.bodies[n:])
	p.bodies = p.bodies[:n]
	return extra
}

// TotalMass sums the mass of all bodies.
func (p *Population) TotalMass() float64 {
	sum := 0.0
	for _, b := range p.bodies {
		sum += b.Mass
	}
	return sum
}
