package cpu

const (
	STACK_LIMIT = 16 // Default maximum stack depth
)

// Stack is the bounded return address stack. Limit is fixed once the
// machine is built; zero selects STACK_LIMIT.
type Stack struct {
	Limit int
	Data  []uint16
}

func (s *Stack) limit() int {
	if s.Limit <= 0 {
		return STACK_LIMIT
	}
	return s.Limit
}

func (s *Stack) Push(value uint16) (err error) {
	if s.Full() {
		err = ErrStackFull
		return
	}

	s.Data = append(s.Data, value)
	return
}

func (s *Stack) Pop() (value uint16, err error) {
	value, err = s.Peek()
	if err == nil {
		s.Data = s.Data[:len(s.Data)-1]
	}
	return
}

func (s *Stack) Empty() bool {
	return len(s.Data) == 0
}

func (s *Stack) Full() bool {
	return len(s.Data) >= s.limit()
}

// Depth is the number of return addresses held.
func (s *Stack) Depth() int {
	return len(s.Data)
}

func (s *Stack) Peek() (value uint16, err error) {
	if s.Empty() {
		err = ErrStackEmpty
		return
	}

	return s.Data[len(s.Data)-1], nil
}

func (s *Stack) Reset() {
	if len(s.Data) > 0 {
		s.Data = s.Data[:0]
	}
}
