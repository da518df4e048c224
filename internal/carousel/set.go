package carousel

// Set is an ordered, deduplicated list of attachments. Sets are immutable;
// data changes produce a replacement set which is compared structurally
// against the previous one.
type Set struct {
	items []Attachment
	index map[string]int
}

// NewSet builds a set from items in order, filling empty keys from the
// source or message ID and dropping duplicates (first occurrence wins).
func NewSet(items []Attachment) Set {
	set := Set{index: make(map[string]int, len(items))}
	for _, att := range items {
		if att.Key == "" {
			att.Key = att.Source
		}
		if att.Key == "" {
			att.Key = att.MessageID
		}
		if att.Key == "" {
			continue
		}
		if _, dup := set.index[att.Key]; dup {
			continue
		}
		set.index[att.Key] = len(set.items)
		set.items = append(set.items, att)
	}
	return set
}

// Derive extracts the attachment set from a message list in message order.
// A non-empty anchor restricts the walk to that reply thread: the anchor
// message itself plus direct replies to it.
func Derive(msgs []Message, anchor string) Set {
	var items []Attachment
	for _, msg := range msgs {
		if anchor != "" && msg.ID != anchor && msg.ReplyTo != anchor {
			continue
		}
		for _, att := range msg.Attachments {
			if att.MessageID == "" {
				att.MessageID = msg.ID
			}
			items = append(items, att)
		}
	}
	return NewSet(items)
}

func (s Set) Len() int {
	return len(s.items)
}

// At returns the attachment at i, reporting whether i is in range.
func (s Set) At(i int) (Attachment, bool) {
	if i < 0 || i >= len(s.items) {
		return Attachment{}, false
	}
	return s.items[i], true
}

// Index locates an attachment by key, returning NotFound when absent.
func (s Set) Index(key string) int {
	if key == "" {
		return NotFound
	}
	if i, ok := s.index[key]; ok {
		return i
	}
	return NotFound
}

// Items returns a copy of the attachments in order.
func (s Set) Items() []Attachment {
	out := make([]Attachment, len(s.items))
	copy(out, s.items)
	return out
}

// Equal reports structural equality, element by element.
func (s Set) Equal(other Set) bool {
	if len(s.items) != len(other.items) {
		return false
	}
	for i, att := range s.items {
		if att != other.items[i] {
			return false
		}
	}
	return true
}

// Outcome is the result of reconciling a fresh set against the current
// state. Effects are returned as data and executed by the caller.
type Outcome struct {
	// Page is the index of the active attachment in the new set, or
	// NotFound when it is absent.
	Page int

	// Active is the attachment at Page. Valid only when HasActive is set.
	Active    Attachment
	HasActive bool

	// Dismiss is set when the item being viewed was deleted from the
	// underlying data: the active key is gone and so is the item last
	// shown to the user.
	Dismiss bool

	// Changed reports whether next differs structurally from prev.
	Changed bool
}

// Reconcile locates activeKey in the replacement set and decides the
// resulting page state. lastShownKey is the key of the attachment most
// recently committed to the screen; dismissal fires only when both lookups
// fail, so a deep link to a never-present item degrades to the NotFound
// placeholder instead of closing the host.
func Reconcile(next, prev Set, activeKey, lastShownKey string) Outcome {
	out := Outcome{Changed: !next.Equal(prev)}

	out.Page = next.Index(activeKey)
	if out.Page >= 0 {
		out.Active, out.HasActive = next.At(out.Page)
		return out
	}

	if lastShownKey != "" && next.Index(lastShownKey) == NotFound {
		out.Dismiss = true
	}
	return out
}
