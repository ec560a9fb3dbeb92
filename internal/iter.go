package internal

import (
	"iter"
)

// Addresses walks the inclusive range of addresses between start and end.
// When start is above end the walk runs downward.
func Addresses(start, end byte) iter.Seq[byte] {
	return func(yield func(addr byte) bool) {
		step := 1
		if start > end {
			step = -1
		}
		for addr := int(start); ; addr += step {
			if !yield(byte(addr)) {
				return // Stop if the consumer stops
			}
			if addr == int(end) {
				return
			}
		}
	}
}

// IterSeq2Concat concatenates multiple dual-return iterators into a single iterator sequence.
func IterSeq2Concat[T1 any, T2 any](seqs ...iter.Seq2[T1, T2]) iter.Seq2[T1, T2] {
	return func(yield func(T1, T2) bool) {
		for _, seq := range seqs {
			for val1, val2 := range seq {
				if !yield(val1, val2) {
					return
				}
			}
		}
	}
}
