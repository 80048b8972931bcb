package engines

import (
	"fmt"
	"github.com/ValentinKolb/cntd/lib/counter"
	"github.com/ValentinKolb/cntd/lib/counter/engines/cmap"
	"github.com/ValentinKolb/cntd/lib/counter/engines/mutex"
	"github.com/ValentinKolb/cntd/lib/counter/engines/sharded"
)

// Names lists the names of all available engines
var Names = []string{mutex.EngineName, sharded.EngineName, cmap.EngineName}

// New creates the counter engine with the given name.
// numShards is only used by the sharded engine (<= 0 = engine default).
func New(name string, numShards int) (counter.ICounterStore, error) {
	switch name {
	case mutex.EngineName:
		return mutex.NewMutexStore(), nil
	case sharded.EngineName:
		return sharded.NewShardedStore(&sharded.Options{NumShards: numShards}), nil
	case cmap.EngineName:
		return cmap.NewCMapStore(), nil
	default:
		return nil, fmt.Errorf("invalid engine %q (expected one of: %s, %s, %s)", name, mutex.EngineName, sharded.EngineName, cmap.EngineName)
	}
}
