package quiz

import (
	"math/rand"

	"github.com/brainspark/brainspark-engine/internal/domain/shared"
)

// DefaultMaxAttempts bounds how many uniqueness-checked shuffles the
// selector tries before falling back to one unchecked shuffle.
const DefaultMaxAttempts = 10

// Selector picks a randomly ordered subset of the question pool while
// trying to avoid orderings the user has already seen. Randomness is
// injected so tests can run deterministically.
type Selector struct {
	rng         *rand.Rand
	maxAttempts int
}

// NewSelector creates a selector with the given randomness source.
// A non-positive maxAttempts falls back to DefaultMaxAttempts.
func NewSelector(rng *rand.Rand, maxAttempts int) *Selector {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Selector{rng: rng, maxAttempts: maxAttempts}
}

// Selection is the result of assembling a session.
type Selection struct {
	// QuestionIDs is the chosen ordering.
	QuestionIDs []string

	// Key is the canonical fingerprint of the ordering.
	Key string

	// Attempts is how many shuffles were performed.
	Attempts int

	// Repeated is true when every attempt collided with a previous
	// session and the last ordering was accepted anyway.
	Repeated bool
}

// Select shuffles the pool and takes count questions, retrying while the
// resulting ordering matches one of seenKeys. After maxAttempts one more
// shuffle is performed without the uniqueness check and its result is
// accepted even if repeated: a duplicate session beats no session at all.
//
// Returns shared.ErrInvalidCount when count is not positive and
// shared.ErrPoolTooSmall when the pool cannot cover the request.
func (s *Selector) Select(pool []string, count int, seenKeys map[string]struct{}) (Selection, error) {
	if count <= 0 {
		return Selection{}, shared.ErrInvalidCount
	}
	if len(pool) < count {
		return Selection{}, shared.ErrPoolTooSmall
	}

	shuffled := make([]string, len(pool))
	copy(shuffled, pool)

	attempts := 0
	for attempts < s.maxAttempts {
		attempts++

		// Fisher-Yates over the whole pool, then take the prefix.
		s.rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		key := OrderingKey(shuffled[:count])

		if _, seen := seenKeys[key]; !seen {
			result := make([]string, count)
			copy(result, shuffled[:count])
			return Selection{
				QuestionIDs: result,
				Key:         key,
				Attempts:    attempts,
				Repeated:    false,
			}, nil
		}
	}

	// Budget spent: one final shuffle without the uniqueness check.
	attempts++
	s.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	key := OrderingKey(shuffled[:count])
	_, repeated := seenKeys[key]

	result := make([]string, count)
	copy(result, shuffled[:count])
	return Selection{
		QuestionIDs: result,
		Key:         key,
		Attempts:    attempts,
		Repeated:    repeated,
	}, nil
}
