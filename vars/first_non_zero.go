package vars

// FirstNonZero returns the first value that is not the zero value of T.
// With pointer types a nil pointer is skipped and an explicit zero is kept,
// which lets flags, config files and environment variables override each
// other in order.
func FirstNonZero[T comparable](values ...T) T {
	var zero T
	for _, value := range values {
		if value != zero {
			return value
		}
	}
	return zero
}
