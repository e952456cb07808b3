package assignment

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeIDs(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	return ids
}

// assertDerangement checks the three draw guarantees: every ID gives
// exactly once, every ID receives exactly once, nobody gets themselves.
func assertDerangement(t *testing.T, ids []uuid.UUID, pairs []Pair) {
	t.Helper()
	require.Len(t, pairs, len(ids))

	givers := make(map[uuid.UUID]int)
	receivers := make(map[uuid.UUID]int)
	for _, p := range pairs {
		assert.NotEqual(t, p.GiverID, p.ReceiverID, "self-gift detected")
		givers[p.GiverID]++
		receivers[p.ReceiverID]++
	}
	for _, id := range ids {
		assert.Equal(t, 1, givers[id], "each participant must give exactly once")
		assert.Equal(t, 1, receivers[id], "each participant must receive exactly once")
	}
}

func TestDrawRejectsSmallGroups(t *testing.T) {
	_, err := Draw(nil)
	assert.ErrorIs(t, err, ErrInsufficientParticipants)

	_, err = Draw(makeIDs(1))
	assert.ErrorIs(t, err, ErrInsufficientParticipants)
}

func TestDrawProducesDerangement(t *testing.T) {
	for n := 2; n <= 12; n++ {
		ids := makeIDs(n)
		for i := 0; i < 50; i++ {
			pairs, err := Draw(ids)
			require.NoError(t, err)
			assertDerangement(t, ids, pairs)
		}
	}
}

func TestDrawTwoParticipantsAreMutual(t *testing.T) {
	ids := makeIDs(2)
	// with two participants the only derangement is the mutual swap
	for i := 0; i < 100; i++ {
		pairs, err := Draw(ids)
		require.NoError(t, err)
		require.Len(t, pairs, 2)

		byGiver := map[uuid.UUID]uuid.UUID{
			pairs[0].GiverID: pairs[0].ReceiverID,
			pairs[1].GiverID: pairs[1].ReceiverID,
		}
		assert.Equal(t, ids[1], byGiver[ids[0]])
		assert.Equal(t, ids[0], byGiver[ids[1]])
	}
}

func TestDrawDoesNotMutateInput(t *testing.T) {
	ids := makeIDs(6)
	original := slices.Clone(ids)

	_, err := Draw(ids)
	require.NoError(t, err)
	assert.Equal(t, original, ids)
}

func TestDrawWithRandIsDeterministic(t *testing.T) {
	ids := makeIDs(8)

	seed := [32]byte{1, 2, 3}
	first, err := DrawWithRand(ids, rand.New(rand.NewChaCha8(seed)))
	require.NoError(t, err)
	second, err := DrawWithRand(ids, rand.New(rand.NewChaCha8(seed)))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDrawFormsSingleCycle(t *testing.T) {
	// the construction chains the shuffled order into one ring, so
	// following giver→receiver from any participant must visit everyone
	// before coming back
	ids := makeIDs(7)
	pairs, err := Draw(ids)
	require.NoError(t, err)

	next := make(map[uuid.UUID]uuid.UUID, len(pairs))
	for _, p := range pairs {
		next[p.GiverID] = p.ReceiverID
	}

	current := ids[0]
	steps := 0
	for {
		current = next[current]
		steps++
		if current == ids[0] {
			break
		}
		require.LessOrEqual(t, steps, len(ids), "cycle shorter than the group")
	}
	assert.Equal(t, len(ids), steps)
}

func TestDrawThreeParticipantsCoversBothCycles(t *testing.T) {
	ids := makeIDs(3)

	// exactly two derangements exist for three participants (the two
	// 3-cycles); across varied seeds both must show up
	seen := make(map[uuid.UUID]bool)
	for i := 0; i < 200; i++ {
		var seed [32]byte
		seed[0] = byte(i)
		seed[1] = byte(i >> 8)
		pairs, err := DrawWithRand(ids, rand.New(rand.NewChaCha8(seed)))
		require.NoError(t, err)
		assertDerangement(t, ids, pairs)

		for _, p := range pairs {
			if p.GiverID == ids[0] {
				seen[p.ReceiverID] = true
			}
		}
	}
	assert.True(t, seen[ids[1]], "cycle a→b→c→a never produced")
	assert.True(t, seen[ids[2]], "cycle a→c→b→a never produced")
}

func TestDrawInputOrderDoesNotLeak(t *testing.T) {
	// the identity permutation (everyone gives to the next in input
	// order) must not be the only outcome
	ids := makeIDs(5)

	differed := false
	for i := 0; i < 50 && !differed; i++ {
		pairs, err := Draw(ids)
		require.NoError(t, err)
		for _, p := range pairs {
			if p.GiverID == ids[0] && p.ReceiverID != ids[1] {
				differed = true
				break
			}
		}
	}
	assert.True(t, differed, "draw appears to follow input order")
}
