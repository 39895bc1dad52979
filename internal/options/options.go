// Package options implements the generic functional option pattern shared by
// the extractor, writer and adapter constructors.
package options

// Option configures a target of type T, usually a pointer to a config.
type Option[T any] interface {
	apply(T) error
}

// Func adapts a plain function to Option. A nil Func is a no-op.
type Func[T any] func(T) error

func (f Func[T]) apply(target T) error {
	if f == nil {
		return nil
	}

	return f(target)
}

// New creates an option from a function that may reject its input, e.g. a
// negative chunk size.
func New[T any](fn func(T) error) Func[T] {
	return fn
}

// NoError creates an option from a function that cannot fail.
func NoError[T any](fn func(T)) Func[T] {
	return func(target T) error {
		fn(target)
		return nil
	}
}

// Apply applies options in order and stops at the first error. Nil options
// are skipped.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(target); err != nil {
			return err
		}
	}

	return nil
}

// Build applies opts on top of defaults and returns the configured target,
// or the zero T when an option fails.
func Build[T any](defaults T, opts ...Option[T]) (T, error) {
	if err := Apply(defaults, opts...); err != nil {
		var zero T
		return zero, err
	}

	return defaults, nil
}
