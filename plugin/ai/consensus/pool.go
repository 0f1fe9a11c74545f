package consensus

// Candidate is a distinct sampled value and the number of times it was seen.
type Candidate[V comparable] struct {
	Value V
	Votes int
}

// pool tallies samples in first-seen order. It belongs to exactly one
// extraction call and is not safe for concurrent use on its own.
type pool[V comparable] struct {
	index   map[V]int
	entries []Candidate[V]
}

func newPool[V comparable]() *pool[V] {
	return &pool[V]{index: make(map[V]int)}
}

// add records one sample of v and returns its updated count.
func (p *pool[V]) add(v V) int {
	if i, ok := p.index[v]; ok {
		p.entries[i].Votes++
		return p.entries[i].Votes
	}
	p.index[v] = len(p.entries)
	p.entries = append(p.entries, Candidate[V]{Value: v, Votes: 1})
	return 1
}

// snapshot copies the tally so it can outlive the pool.
func (p *pool[V]) snapshot() []Candidate[V] {
	out := make([]Candidate[V], len(p.entries))
	copy(out, p.entries)
	return out
}
