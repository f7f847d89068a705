package ldapserver

import "container/list"

// pipeline is the round-robin queue of outstanding requests on one
// connection, modelled on the intrusive circular list original_source's
// ldap_connection walks in ldap_connection_respond: each call to respond
// services one reply from the current request, then rotates to the next,
// so no single slow-to-produce request starves its neighbours.
type pipeline struct {
	l   *list.List
	cur *list.Element
}

func newPipeline() *pipeline {
	return &pipeline{l: list.New()}
}

func (p *pipeline) Len() int {
	return p.l.Len()
}

// Add appends a new request to the tail of the pipeline.
func (p *pipeline) Add(r *Request) {
	e := p.l.PushBack(r)
	r.elem = e
	if p.cur == nil {
		p.cur = e
	}
}

// Current returns the request whose turn it is, or nil if the pipeline
// is empty.
func (p *pipeline) Current() *Request {
	if p.cur == nil {
		return nil
	}
	return p.cur.Value.(*Request)
}

// Advance rotates to the next request, wrapping around to the front.
func (p *pipeline) Advance() {
	if p.cur == nil {
		return
	}
	next := p.cur.Next()
	if next == nil {
		next = p.l.Front()
	}
	p.cur = next
}

// Remove removes r from the pipeline, rotating cur off of it first if
// necessary.
func (p *pipeline) Remove(r *Request) {
	if r.elem == nil {
		return
	}
	if p.cur == r.elem {
		p.Advance()
		if p.cur == r.elem {
			// r was the only element.
			p.cur = nil
		}
	}
	p.l.Remove(r.elem)
	r.elem = nil
}

// Abandon removes the pipelined request with the given message id, if
// any, with no reply produced. Per spec.md §4.4, a missing or
// already-completed target is a silent no-op.
func (p *pipeline) Abandon(messageID int) {
	for e := p.l.Front(); e != nil; e = e.Next() {
		r := e.Value.(*Request)
		if r.messageID == messageID {
			p.Remove(r)
			return
		}
	}
}
