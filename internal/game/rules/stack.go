package rules

import "sync"

// ActionStack holds pending and resolving actions. The top of the stack
// resolves first.
type ActionStack struct {
	mu    sync.Mutex
	items []*Action
}

// NewActionStack creates an empty stack.
func NewActionStack() *ActionStack {
	return &ActionStack{
		items: make([]*Action, 0, 16),
	}
}

// Push adds an action to the top of the stack.
func (s *ActionStack) Push(a *Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, a)
}

// Peek returns the top action without removing it.
func (s *ActionStack) Peek() (*Action, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return nil, false
	}
	return s.items[len(s.items)-1], true
}

// Find returns the action with the given ID.
func (s *ActionStack) Find(id string) (*Action, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for idx := len(s.items) - 1; idx >= 0; idx-- {
		if s.items[idx].ID == id {
			return s.items[idx], true
		}
	}
	return nil, false
}

// Remove deletes an action from anywhere in the stack by ID.
func (s *ActionStack) Remove(id string) (*Action, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for idx := len(s.items) - 1; idx >= 0; idx-- {
		if s.items[idx].ID == id {
			a := s.items[idx]
			s.items = append(s.items[:idx], s.items[idx+1:]...)
			return a, true
		}
	}
	return nil, false
}

// Depth returns the number of actions on the stack.
func (s *ActionStack) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// IsEmpty returns whether the stack is empty.
func (s *ActionStack) IsEmpty() bool {
	return s.Depth() == 0
}

// List returns the actions on the stack, topmost last.
func (s *ActionStack) List() []*Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	cpy := make([]*Action, len(s.items))
	copy(cpy, s.items)
	return cpy
}

// Copy returns a stack holding deep copies of every action.
func (s *ActionStack) Copy() *ActionStack {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := &ActionStack{items: make([]*Action, len(s.items), cap(s.items))}
	for i, a := range s.items {
		cp.items[i] = a.Copy()
	}
	return cp
}
