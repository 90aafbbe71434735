package putio

import "fmt"

// Result is the single value delivered by a read operation.
type Result[T any] struct {
	Value T
	Err   error
}

// goResult runs fn on its own goroutine and delivers exactly one Result before
// closing the channel. A panic becomes an error result.
func goResult[T any](fn func() (T, error)) <-chan Result[T] {
	ch := make(chan Result[T], 1)
	go func() {
		defer close(ch)

		var res Result[T]
		defer func() {
			if r := recover(); r != nil {
				res = Result[T]{Err: fmt.Errorf("putio: operation panicked: %v", r)}
			}
			ch <- res
		}()

		res.Value, res.Err = fn()
	}()
	return ch
}

// goBool is goResult for operations that only report success.
func goBool(fn func() bool) <-chan bool {
	return goValue(fn)
}

func goValue[T any](fn func() T) <-chan T {
	ch := make(chan T, 1)
	go func() {
		defer close(ch)

		var v T
		defer func() {
			if r := recover(); r != nil {
				var zero T
				v = zero
			}
			ch <- v
		}()

		v = fn()
	}()
	return ch
}
