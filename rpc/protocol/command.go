package protocol

import (
	"strings"
	"unicode"
)

// --------------------------------------------------------------------------
// Verbs
// --------------------------------------------------------------------------

// Verb identifies the operation of a command line
type Verb string

const (
	VerbIncr     Verb = "INCR"
	VerbDecr     Verb = "DECR"
	VerbSnapshot Verb = "SNAPSHOT"
)

// arity returns the number of tokens (verb included) a command line with this verb must have
func (v Verb) arity() int {
	switch v {
	case VerbIncr, VerbDecr:
		return 2
	case VerbSnapshot:
		return 1
	default:
		return 0
	}
}

// --------------------------------------------------------------------------
// Command
// --------------------------------------------------------------------------

// Command is one parsed command line
type Command struct {
	Verb Verb
	Key  string // Empty for SNAPSHOT
}

// String renders the command in its wire form (without line terminator)
func (c Command) String() string {
	if c.Key == "" {
		return string(c.Verb)
	}
	return string(c.Verb) + " " + c.Key
}

// ParseLine parses a single command line. The line may still carry its "\n" or
// "\r\n" terminator. Leading and trailing whitespace is trimmed, tokens are split
// on single spaces and the verb is matched case-insensitively.
//
// All failures are returned as *Error and concern only this line.
func ParseLine(line []byte) (Command, error) {
	text := strings.TrimSpace(string(line))
	if text == "" {
		return Command{}, ErrEmptyLine
	}

	tokens := strings.Split(text, " ")
	verb := Verb(strings.ToUpper(tokens[0]))

	arity := verb.arity()
	if arity == 0 {
		return Command{}, newError("unknown command %q", tokens[0])
	}
	if len(tokens) != arity {
		return Command{}, newError("wrong number of arguments for %q", string(verb))
	}

	cmd := Command{Verb: verb}
	if arity == 2 {
		cmd.Key = tokens[1]
		if cmd.Key == "" {
			return Command{}, ErrEmptyKey
		}
	}
	return cmd, nil
}

// ValidateKey reports whether key can be sent as the argument of INCR or DECR.
// Keys must be non-empty and must not contain whitespace or control characters,
// since those would be split off or trimmed by the server.
func ValidateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	for _, r := range key {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return newError("key %q contains whitespace or control characters", key)
		}
	}
	return nil
}
