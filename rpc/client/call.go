package client

import (
	"context"
	"encoding/json"
	"fmt"
)

// DecodeInto returns a Transform that unmarshals the raw result into a T
func DecodeInto[T any]() Transform {
	return func(raw json.RawMessage) (any, error) {
		var v T
		if len(raw) == 0 {
			return v, nil
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

// Sender is the request surface of a Client, accepted by helpers built on top of it
type Sender interface {
	Send(cmd string, args map[string]any, cb Callback, transform Transform)
}

// Call sends cmd and blocks until the result arrives or ctx is done. The result is
// unmarshalled into T. Cancelling ctx only stops the wait: the request stays pending
// and is still resolved (and discarded) exactly once.
func Call[T any](ctx context.Context, c Sender, cmd string, args map[string]any) (T, error) {
	type outcome struct {
		result any
		err    error
	}
	done := make(chan outcome, 1)

	c.Send(cmd, args, func(result any, err error) {
		done <- outcome{result: result, err: err}
	}, DecodeInto[T]())

	var zero T
	select {
	case <-ctx.Done():
		return zero, fmt.Errorf("%s: %w", cmd, ctx.Err())
	case o := <-done:
		if o.err != nil {
			return zero, o.err
		}
		if o.result == nil {
			return zero, nil
		}
		v, ok := o.result.(T)
		if !ok {
			return zero, fmt.Errorf("%s: unexpected result type %T", cmd, o.result)
		}
		return v, nil
	}
}
