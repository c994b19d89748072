package spell

// store indexes templates by slot count.
//
// Every template lives in exactly one bucket, the one for its own slot count,
// which never changes. Buckets and the global list keep creation order.
type store struct {
	buckets map[int][]*Template
	all     []*Template
}

func newStore() *store {
	return &store{
		buckets: make(map[int][]*Template),
	}
}

// candidates returns the templates with exactly n slots, earliest first.
func (s *store) candidates(n int) []*Template {
	return s.buckets[n]
}

// register adds a newly created template under its slot count.
func (s *store) register(t *Template) {
	n := len(t.slots)
	s.buckets[n] = append(s.buckets[n], t)
	s.all = append(s.all, t)
}

// templates returns every template in creation order.
func (s *store) templates() []*Template {
	return s.all
}

// len returns the number of templates.
func (s *store) len() int {
	return len(s.all)
}

// nextID returns the id the next registered template will receive.
func (s *store) nextID() int {
	return len(s.all) + 1
}

// best scores every candidate for tokens and returns the accepted one with
// the longest LCS, the earliest created winning ties. Candidates with fewer
// fixed slots than the acceptance threshold are skipped without scoring:
// their LCS is bounded by their fixed slots, so they could never be accepted.
func (s *store) best(tokens []string) (*Template, []Pair) {
	var (
		best      *Template
		bestPairs []Pair
		bestLen   = -1
	)

	need := threshold(len(tokens))
	for _, t := range s.candidates(len(tokens)) {
		if t.fixed < need {
			continue
		}
		n, pairs := t.score(tokens)
		if !Accepts(n, len(t.slots), len(tokens)) {
			continue
		}
		if n > bestLen {
			best, bestPairs, bestLen = t, pairs, n
		}
	}

	return best, bestPairs
}
