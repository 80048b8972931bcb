package protocol

import (
	"bufio"
	"errors"
	"io"
)

const (
	// DefaultMaxLineBytes is the default upper bound for a command line including its terminator
	DefaultMaxLineBytes = 64 * 1024
	minReadBufferSize   = 16
	maxReadBufferSize   = 64 * 1024
)

// Decoder reads command lines from a byte stream.
//
// A line may arrive spread over any number of reads; bytes are buffered until the
// "\n" terminator is seen. When the underlying reader returns an error other than
// io.EOF, the bytes of the incomplete line are kept and reading can be retried.
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	r            *bufio.Reader
	maxLineBytes int
	line         []byte // bytes of the current, not yet terminated line
	overflow     bool   // current line exceeded maxLineBytes, discard until "\n"
}

// NewDecoder creates a decoder reading from r. Lines longer than maxLineBytes
// (terminator included) are rejected with ErrLineTooLong (<= 0 = DefaultMaxLineBytes).
func NewDecoder(r io.Reader, maxLineBytes int) *Decoder {
	if maxLineBytes <= 0 {
		maxLineBytes = DefaultMaxLineBytes
	}
	bufSize := min(max(maxLineBytes, minReadBufferSize), maxReadBufferSize)
	return &Decoder{
		r:            bufio.NewReaderSize(r, bufSize),
		maxLineBytes: maxLineBytes,
	}
}

// ReadCommand reads and parses the next command line.
//
// It returns a *Error for a malformed line (the stream stays usable), io.EOF once
// the stream ended cleanly, and any other error from the underlying reader as is.
func (d *Decoder) ReadCommand() (Command, error) {
	line, err := d.ReadLine()
	if err != nil {
		return Command{}, err
	}
	return ParseLine(line)
}

// ReadLine returns the next raw line including its terminator. The returned slice
// is only valid until the next call.
//
// Oversized lines are consumed completely and reported as ErrLineTooLong. Bytes
// left without a terminator at the end of the stream are reported as
// ErrUnterminatedLine, the following call returns io.EOF.
func (d *Decoder) ReadLine() ([]byte, error) {
	for {
		chunk, err := d.r.ReadSlice('\n')
		if !d.overflow {
			d.line = append(d.line, chunk...)
			if len(d.line) > d.maxLineBytes {
				d.overflow = true
				d.line = d.line[:0]
			}
		}

		switch {
		case err == nil:
			line, overflow := d.line, d.overflow
			d.reset()
			if overflow {
				return nil, ErrLineTooLong
			}
			return line, nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			if len(d.line) > 0 || d.overflow {
				d.reset()
				return nil, ErrUnterminatedLine
			}
			return nil, io.EOF
		default:
			return nil, err
		}
	}
}

// Buffered reports whether bytes of an incomplete line are pending
func (d *Decoder) Buffered() bool {
	return len(d.line) > 0 || d.overflow || d.r.Buffered() > 0
}

func (d *Decoder) reset() {
	d.line = d.line[:0]
	d.overflow = false
}
