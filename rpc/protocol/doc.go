// Package protocol implements the line-oriented text protocol spoken by cntd.
//
// Every request is one line terminated by "\n" (a preceding "\r" is tolerated).
// Tokens are separated by single spaces and the verb is case-insensitive:
//
//	INCR <key>   ->  "+<new value>\r\n"
//	DECR <key>   ->  "+<new value>\r\n"
//	SNAPSHOT     ->  "<key>: <value>\r\n" for every counter, then "\r\n"
//
// Anything else is answered with "-ERR <reason>\r\n" and the connection stays open.
//
// Key Components:
//
//   - Decoder: Reassembles command lines from a stream that may deliver them in
//     arbitrary fragments and parses them into Commands. Oversized lines are
//     discarded and reported without losing synchronization with the stream.
//
//   - Reply / Encoder: Builds and writes the three reply shapes (value, snapshot,
//     error). AppendReply renders a reply into a caller supplied buffer.
//
//   - ReplyReader: The client side counterpart that decodes replies into values
//     and snapshots.
//
//   - Error: A per-line protocol error. A malformed line never invalidates the
//     connection it arrived on.
package protocol
