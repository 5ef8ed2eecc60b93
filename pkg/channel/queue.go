package channel

// Reply queue access. None of these methods perform I/O: callers drive
// the pipeline with an explicit Update and then read the queue, a
// deliberate two-step contract. Messages appear here only once complete
// (delimiter observed), in the exact order their delimiters were seen.

// Pending returns the number of queued replies.
func (ch *Channel) Pending() int {
	return len(ch.replies)
}

// Reply returns the queued reply at index i.
func (ch *Channel) Reply(i int) (string, bool) {
	if i < 0 || i >= len(ch.replies) {
		return "", false
	}
	return ch.replies[i], true
}

// SetReply replaces the queued reply at index i in place.
func (ch *Channel) SetReply(i int, msg string) bool {
	if i < 0 || i >= len(ch.replies) {
		return false
	}
	ch.replies[i] = msg
	return true
}

// DeleteReply removes the queued reply at index i, preserving order.
func (ch *Channel) DeleteReply(i int) bool {
	if i < 0 || i >= len(ch.replies) {
		return false
	}
	ch.replies = append(ch.replies[:i], ch.replies[i+1:]...)
	return true
}

// PopReply removes and returns the oldest queued reply. Returns false
// when the queue is empty.
func (ch *Channel) PopReply() (string, bool) {
	if len(ch.replies) == 0 {
		return "", false
	}
	reply := ch.replies[0]
	ch.replies = ch.replies[1:]
	return reply, true
}

// SetReplyFilter registers a predicate applied by EachReply and
// ReverseReplies. Replies failing the predicate are discarded during the
// drain. Pass nil to remove the filter.
func (ch *Channel) SetReplyFilter(filter func(string) bool) {
	ch.filter = filter
}

// EachReply drains the queue: it returns the filtered replies in arrival
// order and always leaves the queue empty, whatever the filter decided.
// This is a one-shot, consuming traversal.
func (ch *Channel) EachReply() []string {
	replies := ch.takeFiltered()
	return replies
}

// ReverseReplies drains the queue like EachReply but returns the
// filtered replies newest first.
func (ch *Channel) ReverseReplies() []string {
	replies := ch.takeFiltered()
	for i, j := 0, len(replies)-1; i < j; i, j = i+1, j-1 {
		replies[i], replies[j] = replies[j], replies[i]
	}
	return replies
}

func (ch *Channel) takeFiltered() []string {
	var out []string
	if ch.filter == nil {
		out = ch.replies
	} else {
		for _, reply := range ch.replies {
			if ch.filter(reply) {
				out = append(out, reply)
			}
		}
	}
	ch.replies = nil
	return out
}
