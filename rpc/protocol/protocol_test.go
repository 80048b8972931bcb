package protocol

import (
	"bytes"
	"errors"
	"github.com/ValentinKolb/cntd/lib/counter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"strings"
	"syscall"
	"testing"
	"testing/iotest"
)

// --------------------------------------------------------------------------
// Parsing
// --------------------------------------------------------------------------

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    Command
		wantErr string
	}{
		{name: "incr", line: "INCR foo\n", want: Command{Verb: VerbIncr, Key: "foo"}},
		{name: "decr crlf", line: "DECR foo\r\n", want: Command{Verb: VerbDecr, Key: "foo"}},
		{name: "snapshot", line: "SNAPSHOT\r\n", want: Command{Verb: VerbSnapshot}},
		{name: "lower case verb", line: "incr foo\n", want: Command{Verb: VerbIncr, Key: "foo"}},
		{name: "surrounding whitespace", line: "  INCR foo \t\r\n", want: Command{Verb: VerbIncr, Key: "foo"}},
		{name: "key keeps case", line: "INCR FooBar\n", want: Command{Verb: VerbIncr, Key: "FooBar"}},
		{name: "unknown verb", line: "BOGUS\n", wantErr: `unknown command "BOGUS"`},
		{name: "missing key", line: "INCR\n", wantErr: `wrong number of arguments for "INCR"`},
		{name: "too many args", line: "DECR a b\n", wantErr: `wrong number of arguments for "DECR"`},
		{name: "snapshot with arg", line: "SNAPSHOT x\n", wantErr: `wrong number of arguments for "SNAPSHOT"`},
		{name: "double space", line: "INCR  foo\n", wantErr: `wrong number of arguments for "INCR"`},
		{name: "empty", line: "\r\n", wantErr: "empty line"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := ParseLine([]byte(tt.line))
			if tt.wantErr != "" {
				var perr *Error
				require.ErrorAs(t, err, &perr)
				assert.Equal(t, tt.wantErr, perr.Reason)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd)
		})
	}
}

func TestValidateKey(t *testing.T) {
	assert.NoError(t, ValidateKey("req.page.42"))
	assert.ErrorIs(t, ValidateKey(""), ErrEmptyKey)
	assert.Error(t, ValidateKey("a b"))
	assert.Error(t, ValidateKey("a\tb"))
	assert.Error(t, ValidateKey("a\x00b"))
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "INCR foo", Command{Verb: VerbIncr, Key: "foo"}.String())
	assert.Equal(t, "SNAPSHOT", Command{Verb: VerbSnapshot}.String())
}

// --------------------------------------------------------------------------
// Decoder
// --------------------------------------------------------------------------

func TestDecoderMultipleLines(t *testing.T) {
	d := NewDecoder(strings.NewReader("INCR a\r\nDECR b\nSNAPSHOT\r\n"), 0)

	want := []Command{
		{Verb: VerbIncr, Key: "a"},
		{Verb: VerbDecr, Key: "b"},
		{Verb: VerbSnapshot},
	}
	for _, w := range want {
		cmd, err := d.ReadCommand()
		require.NoError(t, err)
		assert.Equal(t, w, cmd)
	}
	_, err := d.ReadCommand()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecoderFragmentedInput(t *testing.T) {
	// one byte per read
	d := NewDecoder(iotest.OneByteReader(strings.NewReader("INCR fragmented\r\nSNAPSHOT\n")), 0)

	cmd, err := d.ReadCommand()
	require.NoError(t, err)
	assert.Equal(t, Command{Verb: VerbIncr, Key: "fragmented"}, cmd)

	cmd, err = d.ReadCommand()
	require.NoError(t, err)
	assert.Equal(t, Command{Verb: VerbSnapshot}, cmd)
}

func TestDecoderBadLineKeepsStreamUsable(t *testing.T) {
	d := NewDecoder(strings.NewReader("BOGUS\nINCR x\n"), 0)

	_, err := d.ReadCommand()
	var perr *Error
	require.ErrorAs(t, err, &perr)

	cmd, err := d.ReadCommand()
	require.NoError(t, err)
	assert.Equal(t, Command{Verb: VerbIncr, Key: "x"}, cmd)
}

func TestDecoderLineTooLong(t *testing.T) {
	long := "INCR " + strings.Repeat("k", 100) + "\n"
	d := NewDecoder(strings.NewReader(long+"INCR ok\n"), 32)

	_, err := d.ReadCommand()
	assert.ErrorIs(t, err, ErrLineTooLong)

	cmd, err := d.ReadCommand()
	require.NoError(t, err)
	assert.Equal(t, Command{Verb: VerbIncr, Key: "ok"}, cmd)
}

func TestDecoderLineAtLimit(t *testing.T) {
	line := "INCR " + strings.Repeat("k", 10) + "\n" // 16 bytes
	d := NewDecoder(strings.NewReader(line), len(line))

	cmd, err := d.ReadCommand()
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("k", 10), cmd.Key)
}

func TestDecoderUnterminatedLine(t *testing.T) {
	d := NewDecoder(strings.NewReader("INCR a\nINCR b"), 0)

	_, err := d.ReadCommand()
	require.NoError(t, err)

	_, err = d.ReadCommand()
	assert.ErrorIs(t, err, ErrUnterminatedLine)

	_, err = d.ReadCommand()
	assert.ErrorIs(t, err, io.EOF)
}

// flakyReader returns EAGAIN after every chunk it delivers
type flakyReader struct {
	chunks []string
	failed bool
}

func (r *flakyReader) Read(p []byte) (int, error) {
	if !r.failed {
		r.failed = true
		return 0, syscall.EAGAIN
	}
	r.failed = false
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	r.chunks = r.chunks[1:]
	return n, nil
}

func TestDecoderRetryAfterTransientError(t *testing.T) {
	d := NewDecoder(&flakyReader{chunks: []string{"IN", "CR ", "retry\r", "\n"}}, 0)

	var (
		cmd      Command
		err      error
		attempts int
	)
	for attempts = 0; attempts < 20; attempts++ {
		cmd, err = d.ReadCommand()
		if !errors.Is(err, syscall.EAGAIN) {
			break
		}
		assert.True(t, d.Buffered() || attempts == 0)
	}
	require.NoError(t, err)
	assert.Equal(t, Command{Verb: VerbIncr, Key: "retry"}, cmd)
}

// --------------------------------------------------------------------------
// Replies
// --------------------------------------------------------------------------

func TestAppendReply(t *testing.T) {
	tests := []struct {
		name  string
		reply Reply
		want  string
	}{
		{name: "positive", reply: NewValueReply(3), want: "+3\r\n"},
		{name: "negative", reply: NewValueReply(-2), want: "+-2\r\n"},
		{name: "error", reply: NewErrorReply("unknown command"), want: "-ERR unknown command\r\n"},
		{name: "error with newline", reply: NewErrorReply("a\r\nb"), want: "-ERR a  b\r\n"},
		{name: "empty snapshot", reply: NewSnapshotReply(counter.Snapshot{}), want: "\r\n"},
		{
			name:  "snapshot sorted",
			reply: NewSnapshotReply(counter.Snapshot{"foo": 1, "bar": -2}),
			want:  "bar: -2\r\nfoo: 1\r\n\r\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(AppendReply(nil, tt.reply)))
		})
	}
}

func TestNewErrorReplyFromErr(t *testing.T) {
	assert.Equal(t, "unknown command \"X\"", NewErrorReplyFromErr(newError("unknown command %q", "X")).Reason)
	assert.Equal(t, "boom", NewErrorReplyFromErr(errors.New("boom")).Reason)
}

func TestEncoderAndReplyReader(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	require.NoError(t, enc.WriteReply(NewValueReply(1)))
	require.NoError(t, enc.WriteReply(NewValueReply(-1)))
	require.NoError(t, enc.WriteReply(NewSnapshotReply(counter.Snapshot{"a": 1, "b": 2})))
	require.NoError(t, enc.WriteReply(NewErrorReply("unknown command \"BOGUS\"")))
	require.NoError(t, enc.WriteReply(NewSnapshotReply(counter.Snapshot{})))

	rr := NewReplyReader(&buf)

	v, err := rr.ReadValue()
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	v, err = rr.ReadValue()
	require.NoError(t, err)
	assert.Equal(t, int64(-1), v)

	snap, err := rr.ReadSnapshot()
	require.NoError(t, err)
	assert.Equal(t, counter.Snapshot{"a": 1, "b": 2}, snap)

	_, err = rr.ReadValue()
	var serr *ServerError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "unknown command \"BOGUS\"", serr.Reason)

	snap, err = rr.ReadSnapshot()
	require.NoError(t, err)
	assert.Empty(t, snap)

	_, err = rr.ReadValue()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReplyReaderMalformed(t *testing.T) {
	_, err := NewReplyReader(strings.NewReader("+abc\r\n")).ReadValue()
	assert.Error(t, err)

	_, err = NewReplyReader(strings.NewReader("nope\r\n")).ReadValue()
	assert.Error(t, err)

	_, err = NewReplyReader(strings.NewReader("a: 1\r\n")).ReadSnapshot()
	assert.ErrorIs(t, err, io.EOF)

	_, err = NewReplyReader(strings.NewReader("+1")).ReadValue()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
