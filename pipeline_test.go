package ldapserver

import (
	"testing"

	ldap "github.com/lor00x/goldap/message"
)

// stubOp is a minimal operation used to exercise pipeline bookkeeping
// without depending on any real request/response construction.
type stubOp struct{}

func (stubOp) next(c *Connection) (ldap.LDAPMessage, bool, bool) {
	return ldap.LDAPMessage{}, true, true
}

func TestPipelineRoundRobinOrder(t *testing.T) {
	p := newPipeline()
	r1 := newRequest(1, stubOp{})
	r2 := newRequest(2, stubOp{})
	r3 := newRequest(3, stubOp{})
	p.Add(r1)
	p.Add(r2)
	p.Add(r3)

	if p.Current() != r1 {
		t.Fatalf("expected r1 first")
	}
	p.Advance()
	if p.Current() != r2 {
		t.Fatalf("expected r2 second")
	}
	p.Advance()
	if p.Current() != r3 {
		t.Fatalf("expected r3 third")
	}
	p.Advance()
	if p.Current() != r1 {
		t.Fatalf("expected wraparound to r1")
	}
}

func TestPipelineRemoveMidRotation(t *testing.T) {
	p := newPipeline()
	r1 := newRequest(1, stubOp{})
	r2 := newRequest(2, stubOp{})
	r3 := newRequest(3, stubOp{})
	p.Add(r1)
	p.Add(r2)
	p.Add(r3)

	p.Remove(r2)
	if p.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", p.Len())
	}
	p.Advance()
	if p.Current() != r3 {
		t.Fatalf("expected r3 after removing r2 and advancing from r1")
	}
}

func TestPipelineAbandonByMessageID(t *testing.T) {
	p := newPipeline()
	r1 := newRequest(7, stubOp{})
	p.Add(r1)

	p.Abandon(99) // no-op: no such message id
	if p.Len() != 1 {
		t.Fatalf("Abandon of unknown id should be a no-op")
	}

	p.Abandon(7)
	if p.Len() != 0 {
		t.Fatalf("Abandon of known id should remove the request")
	}
}

func TestPipelineEmptyCurrentIsNil(t *testing.T) {
	p := newPipeline()
	if p.Current() != nil {
		t.Fatal("Current() on empty pipeline should be nil")
	}
}
