package evolution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func archived(t *testing.T, a *Archive) []Objectives {
	t.Helper()
	items := a.Items()
	out := make([]Objectives, 0, len(items))
	for _, ind := range items {
		fit, ok := ind.Fitness()
		require.True(t, ok)
		out = append(out, fit)
	}
	return out
}

func TestArchive_InsertAndEvict(t *testing.T) {
	a := NewArchive()

	weak := withFitness(Objectives{Smiles: 1})
	a.Update([]*Individual{weak})
	assert.Equal(t, 1, a.Len())

	// dominated candidate is rejected
	worse := withFitness(Objectives{Smiles: 0.5})
	a.Update([]*Individual{worse})
	assert.Equal(t, 1, a.Len())

	// dominating candidate evicts the member
	better := withFitness(Objectives{Smiles: 2})
	a.Update([]*Individual{better})
	require.Equal(t, 1, a.Len())
	assert.Equal(t, []Objectives{{Smiles: 2}}, archived(t, a))
}

func TestArchive_KeepsIncomparableMembers(t *testing.T) {
	a := NewArchive()
	a.Update([]*Individual{
		withFitness(Objectives{Smiles: 1, Moa: 3}),
		withFitness(Objectives{Smiles: 3, Moa: 1}),
		withFitness(Objectives{Smiles: 2, Moa: 2}),
	})
	assert.Equal(t, 3, a.Len())

	// mutual non-domination invariant
	items := a.Items()
	for i, x := range items {
		xf, _ := x.Fitness()
		for j, y := range items {
			if i == j {
				continue
			}
			yf, _ := y.Fitness()
			assert.False(t, xf.Dominates(yf))
		}
	}
}

func TestArchive_RejectsExactDuplicates(t *testing.T) {
	a := NewArchive()

	ind := NewIndividual(3)
	ind.Bits[0] = true
	ind.SetFitness(Objectives{Smiles: 1})

	a.Update([]*Individual{ind})
	a.Update([]*Individual{ind.Clone()})
	assert.Equal(t, 1, a.Len())

	// same fitness on a different genome is a distinct solution
	other := NewIndividual(3)
	other.Bits[1] = true
	other.SetFitness(Objectives{Smiles: 1})
	a.Update([]*Individual{other})
	assert.Equal(t, 2, a.Len())
}

func TestArchive_IgnoresUnevaluated(t *testing.T) {
	a := NewArchive()
	a.Update([]*Individual{NewIndividual(2)})
	assert.Zero(t, a.Len())
}

func TestArchive_CopiesCandidates(t *testing.T) {
	a := NewArchive()
	ind := NewIndividual(2)
	ind.SetFitness(Objectives{Smiles: 1})
	a.Update([]*Individual{ind})

	// mutating the original must not corrupt the archive
	ind.Bits[0] = true
	ind.Invalidate()

	items := a.Items()
	require.Len(t, items, 1)
	assert.False(t, items[0].Bits[0])
	assert.True(t, items[0].Evaluated())
}

//Personal.AI order the ending
