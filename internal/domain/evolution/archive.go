package evolution

// Archive is the monotonic store of the best non-dominated individuals seen
// across the whole run.  Unlike the working population it never loses a
// solution to selection pressure: members leave only when a strictly
// dominating individual arrives.
type Archive struct {
	items []*Individual
}

// NewArchive returns an empty archive.
func NewArchive() *Archive {
	return &Archive{}
}

// Update offers each candidate to the archive.  A candidate enters when no
// member dominates it and no member carries both the same fitness and the
// same genome; members it dominates are evicted.  Candidates without a
// valid fitness are ignored.
func (a *Archive) Update(candidates []*Individual) {
	for _, cand := range candidates {
		candFit, ok := cand.Fitness()
		if !ok {
			continue
		}

		rejected := false
		kept := a.items[:0]
		for _, member := range a.items {
			memFit, _ := member.Fitness()
			if rejected {
				kept = append(kept, member)
				continue
			}
			if memFit.Dominates(candFit) || (memFit.Equal(candFit) && member.SameBits(cand)) {
				rejected = true
				kept = append(kept, member)
				continue
			}
			if candFit.Dominates(memFit) {
				continue // evicted
			}
			kept = append(kept, member)
		}
		a.items = kept
		if !rejected {
			a.items = append(a.items, cand.Clone())
		}
	}
}

// Len returns the archive cardinality.
func (a *Archive) Len() int { return len(a.items) }

// Items returns the archived individuals.  The slice is a copy but the
// individuals are shared; callers must treat them as read-only.
func (a *Archive) Items() []*Individual {
	out := make([]*Individual, len(a.items))
	copy(out, a.items)
	return out
}

//Personal.AI order the ending
