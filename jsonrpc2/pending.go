package jsonrpc2

import (
	"sync"
)

type pendingResult struct {
	resp *Response
	err  error
}

// pendingCalls tracks outstanding requests by ID until their response
// arrives or the stream closes.
type pendingCalls struct {
	mu     sync.Mutex
	calls  map[string]chan pendingResult
	closed error
}

// add registers a new pending call. It fails once the calls were closed.
func (p *pendingCalls) add(key string) (<-chan pendingResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed != nil {
		return nil, p.closed
	}
	if p.calls == nil {
		p.calls = map[string]chan pendingResult{}
	}
	ch := make(chan pendingResult, 1)
	p.calls[key] = ch
	return ch, nil
}

// resolve hands resp to the matching pending call, returning false if there
// is none.
func (p *pendingCalls) resolve(key string, resp *Response) bool {
	p.mu.Lock()
	ch, ok := p.calls[key]
	delete(p.calls, key)
	p.mu.Unlock()
	if !ok {
		return false
	}
	ch <- pendingResult{resp: resp}
	return true
}

func (p *pendingCalls) remove(key string) {
	p.mu.Lock()
	delete(p.calls, key)
	p.mu.Unlock()
}

// closeAll fails every pending call with err, and every later add.
func (p *pendingCalls) closeAll(err error) {
	p.mu.Lock()
	calls := p.calls
	p.calls = nil
	p.closed = err
	p.mu.Unlock()
	for _, ch := range calls {
		ch <- pendingResult{err: err}
	}
}

func (p *pendingCalls) len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}
