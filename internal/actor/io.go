package actor

import "github.com/vk/actorgrid/internal/token"

// InputSlot stores the latest input token of a consumer. Embed it to
// implement InputConsumer.Input.
type InputSlot struct {
	in *token.Token
}

func (s *InputSlot) Input(t *token.Token) { s.in = t }

// CurrentInput returns the pending input without consuming it.
func (s *InputSlot) CurrentInput() *token.Token { return s.in }

// TakeInput returns the pending input and clears the slot.
func (s *InputSlot) TakeInput() *token.Token {
	t := s.in
	s.in = nil
	return t
}

func (s *InputSlot) ClearInput() { s.in = nil }

// OutputQueue is a FIFO of tokens waiting to be collected. Embed it to
// implement the pending output half of OutputProducer.
type OutputQueue struct {
	out []*token.Token
}

func (q *OutputQueue) HasPendingOutput() bool { return len(q.out) > 0 }

func (q *OutputQueue) Output() *token.Token {
	if len(q.out) == 0 {
		return nil
	}
	t := q.out[0]
	q.out[0] = nil
	q.out = q.out[1:]
	return t
}

func (q *OutputQueue) Push(t *token.Token) {
	if t != nil {
		q.out = append(q.out, t)
	}
}

func (q *OutputQueue) ClearOutput() { q.out = nil }
