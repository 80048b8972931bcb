package counter

import (
	"fmt"
	"github.com/ValentinKolb/cntd/lib/counter/util"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// ICounterStore is the capability set shared by all counter engines.
// Counters are created implicitly at 0 the first time a key is touched.
// Mutations return the post-operation value together with a *Error (nil on success).
type ICounterStore interface {
	// Increment adds 1 to the counter for key and returns the new value.
	Increment(key string) (value int64, err error)
	// Decrement subtracts 1 from the counter for key and returns the new value.
	// There is no floor, counters may become negative.
	Decrement(key string) (value int64, err error)
	// Snapshot returns a copy of all (key, value) pairs. Whether the copy is atomic
	// across keys depends on the engine, see StoreInfo.Consistency.
	Snapshot() Snapshot
	// GetInfo returns metadata about the engine and its key distribution.
	// It is not guaranteed that all fields are filled in or that the information is up-to-date!
	GetInfo() StoreInfo
}

// ISnapshotReader is the read-only view of a counter store.
type ISnapshotReader interface {
	// Snapshot returns a copy of all (key, value) pairs.
	Snapshot() Snapshot
}

// --------------------------------------------------------------------------
// Store Info
// --------------------------------------------------------------------------

// Consistency describes the guarantee a Snapshot gives across keys.
type Consistency string

const (
	// ConsistencyAtomic means a snapshot reflects a single instant across all keys.
	ConsistencyAtomic Consistency = "atomic"
	// ConsistencyPerKey means every value was valid when it was read, but the pairs
	// collectively may not correspond to any single instant.
	ConsistencyPerKey Consistency = "per-key"
)

// StoreInfo holds metadata about a counter store.
type StoreInfo struct {
	Engine       string                 `json:"engine"`
	Consistency  Consistency            `json:"consistency"`
	Keys         int                    `json:"keys"`
	Shards       int                    `json:"shards"`
	ShardKeys    []int                  `json:"shard_keys,omitempty"`
	Distribution util.DistributionStats `json:"distribution"`
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("CounterStoreError (code %s): %s", e.Code, e.Msg)
}

// NewError creates a new counter store error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// ValidateKey returns an error if key can not be used as a counter name.
func ValidateKey(key string) error {
	if key == "" {
		return NewError(RetCInvalidKey, "key must not be empty")
	}
	return nil
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess       RetCode = iota // 0: Operation executed successfully.
	RetCInternalError                // 1: Operation failed due to an internal error.
	RetCInvalidKey                   // 2: The key is not a valid counter name.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCInvalidKey:
		return "InvalidKey"
	default:
		return "Unknown"
	}
}
