// Package util provides utility components for the counter engines that
// satisfy the counter.ICounterStore interface.
//
// The package contains:
//   - functions: seed generation, seeded FNV-1a string hashing and shard selection
//   - statistics: summary statistics and a distribution quality score for shard sizes
package util
