// Package reporter implements a periodic console dump of all counters. It only
// depends on counter.ISnapshotReader, never on the mutation operations.
package reporter
