// Package primegen generates the prime number sequence by resumable trial
// division. A Generator can be seeded with an already-computed prefix and
// continues from the element immediately following the last one, which is
// what lets the cache extend its stored sequence instead of recomputing it.
package primegen

// Generator produces primes in order. The zero prefix starts the sequence
// at 2. Generator is not safe for concurrent use; the cache serializes
// access behind its lock.
type Generator struct {
	primes []int64
}

// Resume creates a Generator seeded with an existing strictly increasing,
// gap-free prefix of the prime sequence. The Generator takes ownership of
// the slice.
func Resume(primes []int64) *Generator {
	return &Generator{primes: primes}
}

// Next computes the next prime, appends it to the prefix, and returns it.
func (g *Generator) Next() int64 {
	if len(g.primes) == 0 {
		g.primes = append(g.primes, 2)
		return 2
	}

	candidate := g.primes[len(g.primes)-1] + 1
	for !isPrime(candidate, g.primes) {
		candidate++
	}

	g.primes = append(g.primes, candidate)
	return candidate
}

// Count returns how many primes the generator currently holds.
func (g *Generator) Count() int {
	return len(g.primes)
}

// Items returns the full prefix computed so far. The slice is shared with
// the generator; callers must not mutate it.
func (g *Generator) Items() []int64 {
	return g.primes
}

// First returns the first n primes, computed from scratch.
func First(n int) []int64 {
	g := Resume(nil)
	for g.Count() < n {
		g.Next()
	}
	return g.Items()
}

// isPrime reports whether candidate is prime by trial division against the
// known primes. The prefix is gap-free, so every prime factor up to
// sqrt(candidate) is guaranteed to be in it.
func isPrime(candidate int64, primes []int64) bool {
	for _, p := range primes {
		if p*p > candidate {
			break
		}
		if candidate%p == 0 {
			return false
		}
	}
	return true
}
