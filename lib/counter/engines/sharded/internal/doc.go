// Package internal contains the shard type used by the sharded engine.
package internal
