// Package borolytics builds an analytical report over the NYPD shooting
// incident dataset. Fetch, clean, count, fit, narrate.
//
// Usage:
//
//	import "github.com/borolytics/borolytics/dataset"
//
//	raw, err := dataset.Fetch(ctx, dataset.DefaultURL, 60*time.Second)
//	df, err := dataset.LoadBytes(raw)
//	tbl, stats, err := dataset.Clean(df)
//
// The dataset package produces a cleaned Table, the analytics package turns
// it into deterministic group counts, charts and tables, the trend package
// fits incidents-per-year by least squares, and the report package renders
// everything into a single self-contained HTML document.
//
// Apart from the one download, all computation is local.
package borolytics
