package result

type Of[T any] struct {
	value *T
	err   error
}

func Ok[T any](v *T) Of[T] {
	return Of[T]{value: v, err: nil}
}

func Err[T any](err error) Of[T] {
	return Of[T]{value: nil, err: err}
}

func (r Of[T]) Err() error {
	return r.err
}

// Unwrap panics when called on an error result.
func (r Of[T]) Unwrap() *T {
	if nil != r.err {
		panic("unwrap called on error result: " + r.err.Error())
	}
	return r.value
}
