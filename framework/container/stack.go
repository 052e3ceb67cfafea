package container

// Stack tracks the keys currently being instantiated to detect cycles.
//
// Stack is not safe for concurrent use; the container only touches it while
// holding its instantiation lock.
type Stack struct {
	keys    []Key
	ids     []Key
	members map[Key]struct{}
}

// NewStack creates an empty instantiation stack.
func NewStack() *Stack {
	return &Stack{members: make(map[Key]struct{})}
}

// Push marks key as being instantiated. If key is already on the stack a
// *CycleError is returned and the stack is left unchanged.
func (s *Stack) Push(key Key) error {
	id, err := Normalize(key)
	if err != nil {
		return err
	}
	if _, ok := s.members[id]; ok {
		start := 0
		for i, other := range s.ids {
			if other == id {
				start = i
				break
			}
		}
		path := make([]Key, 0, len(s.keys)-start+1)
		path = append(path, s.keys[start:]...)
		path = append(path, key)
		return &CycleError{Path: path}
	}
	s.keys = append(s.keys, key)
	s.ids = append(s.ids, id)
	s.members[id] = struct{}{}
	return nil
}

// Pop removes the most recently pushed key.
func (s *Stack) Pop() {
	n := len(s.keys)
	if n == 0 {
		return
	}
	delete(s.members, s.ids[n-1])
	s.keys = s.keys[:n-1]
	s.ids = s.ids[:n-1]
}

// Instantiating pushes key and returns the matching release function, to be
// deferred by the caller so the key is popped on every exit path.
//
//	release, err := stack.Instantiating(key)
//	if err != nil {
//	    return err
//	}
//	defer release()
func (s *Stack) Instantiating(key Key) (release func(), err error) {
	if err := s.Push(key); err != nil {
		return nil, err
	}
	return s.Pop, nil
}

// Len returns the number of in-flight keys.
func (s *Stack) Len() int { return len(s.keys) }

// Keys returns a copy of the in-flight keys, outermost first.
func (s *Stack) Keys() []Key {
	out := make([]Key, len(s.keys))
	copy(out, s.keys)
	return out
}
