package normalize

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// mapColumns runs fn once per sample column, at most parallel at a time
// (GOMAXPROCS when parallel <= 0). Each fn call writes only to its own
// column index, so results are independent of scheduling order. Correctness
// never depends on the concurrency degree; parallel == 1 is a plain loop.
func mapColumns(n, parallel int, fn func(j int) error) error {
	if parallel <= 0 {
		parallel = runtime.GOMAXPROCS(0)
	}
	if parallel == 1 || n <= 1 {
		for j := 0; j < n; j++ {
			if err := fn(j); err != nil {
				return err
			}
		}
		return nil
	}
	var g errgroup.Group
	g.SetLimit(parallel)
	for j := 0; j < n; j++ {
		j := j
		g.Go(func() error { return fn(j) })
	}
	return g.Wait()
}
