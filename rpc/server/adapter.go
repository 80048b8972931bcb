package server

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/cntd/lib/counter"
	"github.com/ValentinKolb/cntd/rpc/protocol"
	"time"
)

// NewCounterServerAdapter creates the adapter that routes INCR and DECR to store
// and SNAPSHOT to reader
func NewCounterServerAdapter(store counter.ICounterStore, reader counter.ISnapshotReader, metrics *serverMetrics) IRPCServerAdapter {
	return &counterServerAdapterImpl{
		store:   store,
		reader:  reader,
		metrics: metrics,
	}
}

type counterServerAdapterImpl struct {
	store   counter.ICounterStore
	reader  counter.ISnapshotReader
	metrics *serverMetrics
}

func (a *counterServerAdapterImpl) Handle(cmd protocol.Command, perr *protocol.Error) protocol.Reply {
	if perr != nil {
		a.metrics.protocolErrors.Inc()
		Logger.Debugf("Protocol error: %s", perr.Reason)
		return protocol.NewErrorReply(perr.Reason)
	}

	start := time.Now()
	defer a.metrics.commandDuration.UpdateDuration(start)

	switch cmd.Verb {
	case protocol.VerbIncr:
		a.metrics.incrCommands.Inc()
		return valueReply(a.store.Increment(cmd.Key))
	case protocol.VerbDecr:
		a.metrics.decrCommands.Inc()
		return valueReply(a.store.Decrement(cmd.Key))
	case protocol.VerbSnapshot:
		a.metrics.snapshotCommands.Inc()
		// the snapshot is a copy, no store lock is held while it is written
		return protocol.NewSnapshotReply(a.reader.Snapshot())
	default:
		return protocol.NewErrorReply(fmt.Sprintf("unsupported command %q", string(cmd.Verb)))
	}
}

// valueReply converts the result of a store mutation into a reply
func valueReply(value int64, err error) protocol.Reply {
	if err == nil {
		return protocol.NewValueReply(value)
	}
	var cerr *counter.Error
	if errors.As(err, &cerr) {
		return protocol.NewErrorReply(cerr.Msg)
	}
	Logger.Errorf("Store operation failed: %v", err)
	return protocol.NewErrorReply("internal error")
}
