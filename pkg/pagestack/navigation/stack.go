package navigation

// Stack is the navigation history: an ordered list of descriptors and a
// cursor marking the displayed entry. Entries above the cursor form the
// forward branch left behind by moving back; they survive until the next
// Push, which discards them the way a browser does after visiting a new
// location.
//
// Stack is not safe for concurrent use. The Coordinator is its only writer.
type Stack struct {
	entries []*Descriptor
	cursor  int
}

// NewStack creates an empty stack.
func NewStack() *Stack {
	return &Stack{
		entries: make([]*Descriptor, 0),
		cursor:  -1,
	}
}

// Push discards the forward branch, appends a new entry and makes it current.
func (s *Stack) Push(typeKey TypeKey, parameter any) *Descriptor {
	d := newDescriptor(typeKey, parameter)
	s.pushDescriptor(d)
	return d
}

func (s *Stack) pushDescriptor(d *Descriptor) {
	s.truncateForward()
	s.entries = append(s.entries, d)
	s.cursor = len(s.entries) - 1
}

func (s *Stack) truncateForward() {
	last := len(s.entries) - 1
	if s.cursor >= last {
		return
	}
	for i := s.cursor + 1; i <= last; i++ {
		s.entries[i] = nil
	}
	s.entries = s.entries[:s.cursor+1]
}

// CanGoBack reports whether there is an entry below the cursor.
func (s *Stack) CanGoBack() bool {
	return s.cursor > 0
}

// CanGoForward reports whether there is an entry above the cursor.
func (s *Stack) CanGoForward() bool {
	return s.cursor < len(s.entries)-1
}

// MoveBack moves the cursor one entry back.
func (s *Stack) MoveBack() error {
	if !s.CanGoBack() {
		return ErrUnavailable
	}
	s.cursor--
	return nil
}

// MoveForward moves the cursor one entry forward.
func (s *Stack) MoveForward() error {
	if !s.CanGoForward() {
		return ErrUnavailable
	}
	s.cursor++
	return nil
}

// RemoveAt removes a non-current entry. Entries below the cursor shift the
// cursor down with them.
func (s *Stack) RemoveAt(index int) error {
	if index < 0 || index >= len(s.entries) {
		return ErrIndexOutOfRange
	}
	if index == s.cursor {
		return ErrRemoveCurrent
	}
	copy(s.entries[index:], s.entries[index+1:])
	s.entries[len(s.entries)-1] = nil
	s.entries = s.entries[:len(s.entries)-1]
	if index < s.cursor {
		s.cursor--
	}
	return nil
}

// Current returns the entry at the cursor.
// Returns nil if the stack is empty.
func (s *Stack) Current() *Descriptor {
	if s.cursor < 0 {
		return nil
	}
	return s.entries[s.cursor]
}

// At returns the entry at index, or nil if index is out of range.
func (s *Stack) At(index int) *Descriptor {
	if index < 0 || index >= len(s.entries) {
		return nil
	}
	return s.entries[index]
}

// Cursor returns the index of the current entry, -1 when empty.
func (s *Stack) Cursor() int {
	return s.cursor
}

// Len returns the number of entries, including the forward branch.
func (s *Stack) Len() int {
	return len(s.entries)
}

// IsEmpty returns true if the stack has no entries.
func (s *Stack) IsEmpty() bool {
	return len(s.entries) == 0
}

// Entries returns a copy of every entry in order.
func (s *Stack) Entries() []*Descriptor {
	out := make([]*Descriptor, len(s.entries))
	copy(out, s.entries)
	return out
}

// BackStack returns the entries below the cursor, oldest first.
func (s *Stack) BackStack() []*Descriptor {
	if s.cursor <= 0 {
		return nil
	}
	out := make([]*Descriptor, s.cursor)
	copy(out, s.entries[:s.cursor])
	return out
}

// ForwardStack returns the entries above the cursor, nearest first.
func (s *Stack) ForwardStack() []*Descriptor {
	if !s.CanGoForward() {
		return nil
	}
	out := make([]*Descriptor, len(s.entries)-s.cursor-1)
	copy(out, s.entries[s.cursor+1:])
	return out
}

// Clear removes all entries.
func (s *Stack) Clear() {
	for i := range s.entries {
		s.entries[i] = nil
	}
	s.entries = s.entries[:0]
	s.cursor = -1
}

// replace swaps in the contents of other wholesale.
func (s *Stack) replace(other *Stack) {
	s.entries = other.entries
	s.cursor = other.cursor
}
