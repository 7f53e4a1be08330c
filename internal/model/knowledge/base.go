package knowledge

// Base is the ordered, read-only knowledge base. Order is the match tie-break.
type Base struct {
	entries []Entry
}

// NewBase returns a Base holding a private copy of entries.
func NewBase(entries []Entry) *Base {
	return &Base{entries: append([]Entry(nil), entries...)}
}

// Entries returns the pairs in knowledge-base order.
func (b *Base) Entries() []Entry {
	return append([]Entry(nil), b.entries...)
}

// Questions lists every question, in order.
func (b *Base) Questions() []string {
	questions := make([]string, 0, len(b.entries))
	for _, entry := range b.entries {
		questions = append(questions, entry.Question)
	}
	return questions
}

// Len reports the number of pairs.
func (b *Base) Len() int {
	return len(b.entries)
}
