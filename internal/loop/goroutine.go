package loop

import (
	"context"
	"runtime/pprof"
)

// Go starts fn on a new goroutine labelled with name for pprof.
// A nil parent means context.Background().
func Go(parent context.Context, name string, fn func(ctx context.Context)) {
	if parent == nil {
		parent = context.Background()
	}
	labels := pprof.Labels("goroutine_name", name)
	go pprof.Do(parent, labels, fn)
}
