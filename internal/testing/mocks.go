package testing

import (
	"sync"

	"github.com/gyromouse/gyromouse/internal/keymap"
	"github.com/gyromouse/gyromouse/internal/sink"
)

// Sink operations recorded by RecordingSink.
const (
	OpPress   = "press"
	OpRelease = "release"
	OpMove    = "move"
	OpClick   = "click"
	OpScroll  = "scroll"
)

// Call is one recorded sink invocation.
type Call struct {
	Op     string
	Key    keymap.Key
	DX, DY int
	Button sink.Button
	Err    error
}

// RecordingSink records every call and can be told to fail selected operations.
type RecordingSink struct {
	mu     sync.Mutex
	calls  []Call
	fail   map[string]error
	Closed bool
}

func NewRecordingSink() *RecordingSink {
	return &RecordingSink{fail: map[string]error{}}
}

// FailOn makes every subsequent call of op return err. A nil err clears it.
func (r *RecordingSink) FailOn(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.fail, op)
		return
	}
	r.fail[op] = err
}

func (r *RecordingSink) record(c Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.Err = r.fail[c.Op]
	r.calls = append(r.calls, c)
	return c.Err
}

// Calls returns a copy of all recorded calls.
func (r *RecordingSink) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// CallsOf returns the recorded calls of one operation.
func (r *RecordingSink) CallsOf(op string) []Call {
	var out []Call
	for _, c := range r.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Reset drops recorded calls.
func (r *RecordingSink) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

func (r *RecordingSink) Press(k keymap.Key) error   { return r.record(Call{Op: OpPress, Key: k}) }
func (r *RecordingSink) Release(k keymap.Key) error { return r.record(Call{Op: OpRelease, Key: k}) }
func (r *RecordingSink) Move(dx, dy int) error      { return r.record(Call{Op: OpMove, DX: dx, DY: dy}) }
func (r *RecordingSink) Click(b sink.Button) error  { return r.record(Call{Op: OpClick, Button: b}) }
func (r *RecordingSink) Scroll(dx, dy int) error    { return r.record(Call{Op: OpScroll, DX: dx, DY: dy}) }

func (r *RecordingSink) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Closed = true
	return nil
}
