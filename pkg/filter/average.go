// Package filter provides simple signal filters for sensor readings.
package filter

import "fmt"

// Number is the set of types a filter works on.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// MovingAverage is the average of the last N samples. Before N samples
// are collected, missing samples count as zero. For integer types the
// running sum of N samples must fit in T.
type MovingAverage[T Number] struct {
	buf   []T
	index int
	sum   T
}

// NewMovingAverage creates a MovingAverage over n samples. It panics if n
// is not positive or can't be represented by T.
func NewMovingAverage[T Number](n int) *MovingAverage[T] {
	if n <= 0 {
		panic("filter: window size must be positive")
	}
	if size := T(n); size <= 0 || int(size) != n {
		panic(fmt.Sprintf("filter: window size %d overflows %T", n, size))
	}
	return &MovingAverage[T]{buf: make([]T, n)}
}

// Update adds a sample, replacing the oldest one.
func (a *MovingAverage[T]) Update(v T) {
	a.sum -= a.buf[a.index]
	a.sum += v
	a.buf[a.index] = v
	if a.index++; a.index >= len(a.buf) {
		a.index = 0
	}
}

// Value returns the current average.
func (a *MovingAverage[T]) Value() T {
	return a.sum / T(len(a.buf))
}

// Len returns the window size.
func (a *MovingAverage[T]) Len() int {
	return len(a.buf)
}

// Reset sets all samples to zero.
func (a *MovingAverage[T]) Reset() {
	for i := range a.buf {
		a.buf[i] = 0
	}
	a.index, a.sum = 0, 0
}
