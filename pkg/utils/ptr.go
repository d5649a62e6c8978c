// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package utils

// Ptr returns a pointer to a copy of v. Optional booking fields such as the
// reviewer notes or the recurrence occurrence count are carried as pointers.
func Ptr[T any](v T) *T {
	return &v
}

// Value dereferences p, returning the zero value of T when p is nil.
func Value[T any](p *T) T {
	if p != nil {
		return *p
	}
	var zero T
	return zero
}

// ValueOr dereferences p, returning fallback when p is nil.
func ValueOr[T any](p *T, fallback T) T {
	if p != nil {
		return *p
	}
	return fallback
}
