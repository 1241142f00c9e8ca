package vars

func PtrTo[T any](v T) *T {
	return &v
}

func DerefOrZero[T any](ptr *T) (ret T) {
	if ptr != nil {
		ret = *ptr
	}
	return
}
