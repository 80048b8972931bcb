package protocol

import (
	"bufio"
	"fmt"
	"github.com/ValentinKolb/cntd/lib/counter"
	"io"
	"strconv"
	"strings"
)

// ServerError is an "-ERR" reply received from the server
type ServerError struct {
	Reason string
}

func (e *ServerError) Error() string {
	return "server error: " + e.Reason
}

// ReplyReader decodes replies on the client side of a connection.
// A ReplyReader is not safe for concurrent use.
type ReplyReader struct {
	r *bufio.Reader
}

// NewReplyReader creates a reply reader reading from r
func NewReplyReader(r io.Reader) *ReplyReader {
	return &ReplyReader{r: bufio.NewReader(r)}
}

// readLine returns the next line without its "\r\n" or "\n" terminator
func (rr *ReplyReader) readLine() (string, error) {
	line, err := rr.r.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return "", io.ErrUnexpectedEOF
		}
		return "", err
	}
	return strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r"), nil
}

// ReadValue reads the reply of an INCR or DECR command.
// An "-ERR" reply is returned as *ServerError.
func (rr *ReplyReader) ReadValue() (int64, error) {
	line, err := rr.readLine()
	if err != nil {
		return 0, err
	}
	switch {
	case strings.HasPrefix(line, "+"):
		v, err := strconv.ParseInt(line[1:], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("malformed value reply %q: %w", line, err)
		}
		return v, nil
	case strings.HasPrefix(line, "-ERR"):
		return 0, &ServerError{Reason: strings.TrimSpace(strings.TrimPrefix(line, "-ERR"))}
	default:
		return 0, fmt.Errorf("unexpected reply %q", line)
	}
}

// ReadSnapshot reads the reply of a SNAPSHOT command up to its terminating blank line.
// An "-ERR" reply is returned as *ServerError.
func (rr *ReplyReader) ReadSnapshot() (counter.Snapshot, error) {
	snap := make(counter.Snapshot)
	for first := true; ; first = false {
		line, err := rr.readLine()
		if err != nil {
			return nil, err
		}
		if line == "" {
			return snap, nil
		}
		if first && strings.HasPrefix(line, "-ERR") {
			return nil, &ServerError{Reason: strings.TrimSpace(strings.TrimPrefix(line, "-ERR"))}
		}

		// keys never contain spaces, so the last ": " separates key and value
		sep := strings.LastIndex(line, ": ")
		if sep <= 0 {
			return nil, fmt.Errorf("malformed snapshot line %q", line)
		}
		v, err := strconv.ParseInt(line[sep+2:], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed snapshot line %q: %w", line, err)
		}
		snap[line[:sep]] = v
	}
}
