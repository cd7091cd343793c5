package section

import (
	"encoding/json"
	"fmt"
)

// Bucket holds deduplicated messages per section in first-seen order.
// Every section is always present, possibly empty.
type Bucket struct {
	items map[Section][]string
	seen  map[Section]map[string]struct{}
}

// NewBucket returns a bucket with all five sections empty.
func NewBucket() *Bucket {
	b := &Bucket{
		items: make(map[Section][]string, len(All)),
		seen:  make(map[Section]map[string]struct{}, len(All)),
	}
	for _, s := range All {
		b.items[s] = []string{}
		b.seen[s] = make(map[string]struct{})
	}
	return b
}

// Add appends message to sec unless it is already there. It returns false
// for duplicates and for unknown sections.
func (b *Bucket) Add(sec Section, message string) bool {
	seen, ok := b.seen[sec]
	if !ok {
		return false
	}
	if _, dup := seen[message]; dup {
		return false
	}
	seen[message] = struct{}{}
	b.items[sec] = append(b.items[sec], message)
	return true
}

// list returns the backing slice for sec. A nil bucket reads as empty.
func (b *Bucket) list(sec Section) []string {
	if b == nil {
		return nil
	}
	return b.items[sec]
}

// Items returns a copy of the messages in sec. Never nil.
func (b *Bucket) Items(sec Section) []string {
	src := b.list(sec)
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// Len returns the total number of messages across sections.
func (b *Bucket) Len() int {
	n := 0
	for _, s := range All {
		n += len(b.list(s))
	}
	return n
}

// Empty reports whether every section is empty.
func (b *Bucket) Empty() bool {
	return b.Len() == 0
}

// NonEmpty returns the sections that have at least one message, in
// canonical order.
func (b *Bucket) NonEmpty() []Section {
	var out []Section
	for _, s := range All {
		if len(b.list(s)) > 0 {
			out = append(out, s)
		}
	}
	return out
}

// Map returns a snapshot keyed by section name with all five keys present.
func (b *Bucket) Map() map[string][]string {
	out := make(map[string][]string, len(All))
	for _, s := range All {
		out[string(s)] = b.Items(s)
	}
	return out
}

// MarshalJSON encodes all five sections; empty sections are [] not null.
func (b *Bucket) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Map())
}

// UnmarshalJSON restores a bucket. Unknown section keys are rejected.
func (b *Bucket) UnmarshalJSON(data []byte) error {
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	fresh := NewBucket()
	for key, msgs := range raw {
		sec := Section(key)
		if !sec.Valid() {
			return fmt.Errorf("unknown section %q", key)
		}
		for _, m := range msgs {
			fresh.Add(sec, m)
		}
	}
	*b = *fresh
	return nil
}
