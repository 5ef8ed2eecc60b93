package channel

import "bytes"

// ExtractMessages scans buf once, splitting on delim. The bytes before
// each delimiter occurrence become one completed message; empty segments
// are dropped, not emitted. Whatever follows the last delimiter is
// returned as the unterminated tail. When no delimiter is found the
// buffer comes back untouched.
//
// The function is pure: it never touches the reply queue, and its cost
// is linear in len(buf).
func ExtractMessages(buf, delim []byte) (msgs []string, rest []byte) {
	if len(delim) == 0 {
		return nil, buf
	}

	rest = buf
	for {
		i := bytes.Index(rest, delim)
		if i < 0 {
			return msgs, rest
		}
		if i > 0 {
			msgs = append(msgs, string(rest[:i]))
		}
		rest = rest[i+len(delim):]
	}
}
