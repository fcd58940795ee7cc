package internal

import (
	"cmp"
	"iter"
	"maps"
	"slices"
)

// Concat concatenates multiple define iterators into a single iterator
// sequence. When a key repeats, the first sequence to yield it wins.
func Concat[K comparable, V any](seqs ...iter.Seq2[K, V]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		seen := map[K]bool{}
		for _, seq := range seqs {
			for key, val := range seq {
				if seen[key] {
					continue
				}
				seen[key] = true
				if !yield(key, val) {
					return // Stop if the consumer stops
				}
			}
		}
	}
}

// Sorted yields the pairs of a sequence in key order.
func Sorted[K cmp.Ordered, V any](seq iter.Seq2[K, V]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		all := maps.Collect(seq)
		for _, key := range slices.Sorted(maps.Keys(all)) {
			if !yield(key, all[key]) {
				return
			}
		}
	}
}
