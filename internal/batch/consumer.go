package batch

// Consumer receives the representative item of an accumulation window
// when the scheduler fires. The scheduler resets its window before the
// call, so a failing consumer cannot wedge the pipeline; the error is
// logged and the delivery is lost (retry policy belongs to the transport).
type Consumer[T any] interface {
	Consume(item T) error
}

// ConsumerFunc adapts a plain function to the Consumer interface.
type ConsumerFunc[T any] func(item T) error

// Consume calls f(item).
func (f ConsumerFunc[T]) Consume(item T) error { return f(item) }
