package cpu

// Frame is the storage of a single function call.
type Frame struct {
	ReturnAddress uint16   // Address of the call instruction.
	Locals        []uint16 // Local slots, grown on demand.
}

// grow zero-extends the locals to include index.
func (fr *Frame) grow(index uint16) {
	if int(index) < len(fr.Locals) {
		return
	}

	fr.Locals = append(fr.Locals, make([]uint16, int(index)+1-len(fr.Locals))...)
}

// Read a local slot.
func (fr *Frame) Read(index uint16) uint16 {
	fr.grow(index)
	return fr.Locals[index]
}

// Write a local slot.
func (fr *Frame) Write(index uint16, value uint16) {
	fr.grow(index)
	fr.Locals[index] = value
}

// Stack is the call stack. The last frame is the active frame.
type Stack struct {
	Frames []Frame
	Limit  int // Maximum depth, or 0 for no limit.
}

func (s *Stack) Push(return_address uint16) {
	s.Frames = append(s.Frames, Frame{ReturnAddress: return_address})
}

func (s *Stack) Pop() (frame Frame, ok bool) {
	if s.Empty() {
		return
	}

	frame = s.Frames[len(s.Frames)-1]
	s.Frames[len(s.Frames)-1] = Frame{}
	s.Frames = s.Frames[:len(s.Frames)-1]
	ok = true
	return
}

func (s *Stack) Empty() bool {
	return len(s.Frames) == 0
}

func (s *Stack) Full() bool {
	return s.Limit > 0 && len(s.Frames) >= s.Limit
}

// Peek returns the active frame.
func (s *Stack) Peek() (frame *Frame, ok bool) {
	if s.Empty() {
		return
	}

	return &s.Frames[len(s.Frames)-1], true
}

// ReadSlot reads a local slot of the active frame.
func (s *Stack) ReadSlot(index uint16) (value uint16, err error) {
	frame, ok := s.Peek()
	if !ok {
		err = ErrStackEmpty
		return
	}

	value = frame.Read(index)
	return
}

// WriteSlot writes a local slot of the active frame.
func (s *Stack) WriteSlot(index uint16, value uint16) (err error) {
	frame, ok := s.Peek()
	if !ok {
		err = ErrStackEmpty
		return
	}

	frame.Write(index, value)
	return
}

func (s *Stack) Reset() {
	clear(s.Frames)
	s.Frames = s.Frames[:0]
}
