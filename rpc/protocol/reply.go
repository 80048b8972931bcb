package protocol

import (
	"bufio"
	"github.com/ValentinKolb/cntd/lib/counter"
	"io"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Reply Types
// --------------------------------------------------------------------------

// ReplyType identifies the shape of a reply
type ReplyType int

const (
	ReplyTValue ReplyType = iota
	ReplyTSnapshot
	ReplyTError
)

// Reply is the server's answer to a single command line
type Reply struct {
	Type     ReplyType
	Value    int64            // Used for: ReplyTValue
	Snapshot counter.Snapshot // Used for: ReplyTSnapshot
	Reason   string           // Used for: ReplyTError
}

// NewValueReply creates the reply of a successful INCR or DECR
func NewValueReply(value int64) Reply {
	return Reply{Type: ReplyTValue, Value: value}
}

// NewSnapshotReply creates the reply of a SNAPSHOT command
func NewSnapshotReply(snapshot counter.Snapshot) Reply {
	return Reply{Type: ReplyTSnapshot, Snapshot: snapshot}
}

// NewErrorReply creates an error reply. Line breaks in reason are replaced so
// the reply always stays on one line.
func NewErrorReply(reason string) Reply {
	return Reply{Type: ReplyTError, Reason: strings.NewReplacer("\r", " ", "\n", " ").Replace(reason)}
}

// NewErrorReplyFromErr creates an error reply from err. Protocol errors use
// their bare reason, other errors their full message.
func NewErrorReplyFromErr(err error) Reply {
	if perr, ok := err.(*Error); ok {
		return NewErrorReply(perr.Reason)
	}
	return NewErrorReply(err.Error())
}

// AppendReply appends the wire form of r to dst:
//
//	value:    "+<value>\r\n"
//	snapshot: ("<key>: <value>\r\n")* "\r\n", keys in ascending order
//	error:    "-ERR <reason>\r\n"
func AppendReply(dst []byte, r Reply) []byte {
	switch r.Type {
	case ReplyTValue:
		dst = append(dst, '+')
		dst = strconv.AppendInt(dst, r.Value, 10)
		dst = append(dst, '\r', '\n')
	case ReplyTSnapshot:
		for _, k := range r.Snapshot.Keys() {
			dst = append(dst, k...)
			dst = append(dst, ':', ' ')
			dst = strconv.AppendInt(dst, r.Snapshot[k], 10)
			dst = append(dst, '\r', '\n')
		}
		dst = append(dst, '\r', '\n')
	default:
		dst = append(dst, "-ERR "...)
		dst = append(dst, r.Reason...)
		dst = append(dst, '\r', '\n')
	}
	return dst
}

// --------------------------------------------------------------------------
// Encoder
// --------------------------------------------------------------------------

// Encoder writes replies to a byte stream.
// A Encoder is not safe for concurrent use.
type Encoder struct {
	w   *bufio.Writer
	buf []byte
}

// NewEncoder creates an encoder writing to w
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

// WriteReply encodes r and flushes it to the underlying writer
func (e *Encoder) WriteReply(r Reply) error {
	e.buf = AppendReply(e.buf[:0], r)
	if _, err := e.w.Write(e.buf); err != nil {
		return err
	}
	return e.w.Flush()
}
