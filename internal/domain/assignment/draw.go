package assignment

import (
	cryptorand "crypto/rand"
	"errors"
	"math/rand/v2"
	"slices"

	"github.com/google/uuid"
)

// MinParticipants is the smallest group that admits a derangement
const MinParticipants = 2

// ErrInsufficientParticipants is returned when a draw is attempted with
// fewer than MinParticipants entries.
var ErrInsufficientParticipants = errors.New("need at least 2 participants")

// Pair is one giver→receiver edge produced by a draw
type Pair struct {
	GiverID    uuid.UUID
	ReceiverID uuid.UUID
}

// Draw produces a derangement over the given participant IDs: every ID
// appears exactly once as giver and exactly once as receiver, and no ID
// maps to itself. The input order is never an output channel; each call
// shuffles with a fresh high-entropy seed.
//
// The construction is shuffle-then-cycle: Fisher–Yates permute the IDs,
// then each position gives to the next position modulo N. Adjacent
// positions in a permutation are distinct, so the no-self-gift property
// holds by construction for N >= 2, with no rejection loop or retries.
func Draw(participantIDs []uuid.UUID) ([]Pair, error) {
	var seed [32]byte
	if _, err := cryptorand.Read(seed[:]); err != nil {
		return nil, err
	}
	return DrawWithRand(participantIDs, rand.New(rand.NewChaCha8(seed)))
}

// DrawWithRand is Draw with an explicit randomness source. Callers that
// need reproducible draws (tests) inject a seeded source; production
// paths go through Draw.
func DrawWithRand(participantIDs []uuid.UUID, rng *rand.Rand) ([]Pair, error) {
	n := len(participantIDs)
	if n < MinParticipants {
		return nil, ErrInsufficientParticipants
	}

	shuffled := slices.Clone(participantIDs)
	// Fisher–Yates: uniform j in [0, i] for i from last index down to 1
	for i := n - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	pairs := make([]Pair, n)
	for i := range shuffled {
		pairs[i] = Pair{
			GiverID:    shuffled[i],
			ReceiverID: shuffled[(i+1)%n],
		}
	}

	return pairs, nil
}
