package benchmark

import "github.com/logfan/logfan/core"

// noopAdapter accepts everything and keeps nothing; it isolates engine
// overhead from sink I/O.
type noopAdapter struct{}

func (noopAdapter) Handle(string, *core.Record) error { return nil }
