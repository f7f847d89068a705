package ldapserver

import (
	ldap "github.com/lor00x/goldap/message"

	"github.com/dbaarda/entente/directory"
)

// searchOp implements Search per spec.md §4.4/§4.5: the base DN must be
// empty or the configured basedn (this server projects a flat, two-container
// directory and does not walk subtrees beyond it), the filter must use
// only the supported element set, and matching entries are synthesized
// on demand from the configured accounts.Source. All matching entries
// are computed up front, capped at the effective size limit, then
// streamed out one per Request.respond call, taking turns with the other
// pipelined requests.
type searchOp struct {
	messageID int

	entries    []directory.Entry
	idx        int
	resultCode LDAPResultCode
	matchedDN  string
	diagnostic string
	doneSent   bool
}

func newSearchOp(messageID int, req ldap.SearchRequest, c *Connection) *searchOp {
	s := &searchOp{messageID: messageID}

	basedn := c.server.config.BaseDN
	baseObject := string(req.BaseObject())
	if baseObject != "" && baseObject != basedn {
		s.resultCode = LDAPResultOther
		s.diagnostic = "baseobject is invalid"
		return s
	}
	s.matchedDN = basedn
	if !directory.Supported(req.Filter()) {
		s.resultCode = LDAPResultOther
		s.diagnostic = "filter not supported"
		return s
	}

	limit := c.server.config.maxSearchResults()
	if n := int(req.SizeLimit()); n > 0 && n < limit {
		limit = n
	}

	var matched []directory.Entry
	cfg := c.server.config

	if users, err := cfg.Accounts.Users(); err != nil {
		s.resultCode = LDAPResultOperationsError
		s.diagnostic = err.Error()
		return s
	} else {
		for _, u := range users {
			if !directory.InRange(cfg.UIDRanges, u.UID) {
				continue
			}
			e := directory.UserEntry(basedn, u)
			if directory.Matches(req.Filter(), &e) {
				matched = append(matched, e)
				if len(matched) >= limit {
					break
				}
			}
		}
	}

	if len(matched) < limit {
		if groups, err := cfg.Accounts.Groups(); err != nil {
			s.resultCode = LDAPResultOperationsError
			s.diagnostic = err.Error()
			return s
		} else {
			for _, g := range groups {
				if !directory.InRange(cfg.GIDRanges, g.GID) {
					continue
				}
				e := directory.GroupEntry(basedn, g)
				if directory.Matches(req.Filter(), &e) {
					matched = append(matched, e)
					if len(matched) >= limit {
						break
					}
				}
			}
		}
	}

	s.entries = matched
	s.resultCode = LDAPResultSuccess
	return s
}

func (s *searchOp) next(c *Connection) (ldap.LDAPMessage, bool, bool) {
	if s.idx < len(s.entries) {
		e := s.entries[s.idx]
		s.idx++
		return wrapMessage(s.messageID, entryResult(e)), true, false
	}
	if s.doneSent {
		return ldap.LDAPMessage{}, false, true
	}
	s.doneSent = true
	done := newSearchResultDone(s.resultCode)
	done.SetMatchedDN(s.matchedDN)
	if s.diagnostic != "" {
		done.SetDiagnosticMessage(s.diagnostic)
	}
	return wrapMessage(s.messageID, done), true, true
}

func entryResult(e directory.Entry) ldap.SearchResultEntry {
	res := ldap.NewSearchResultEntry(e.DN)
	for _, a := range e.Attributes {
		res.AddAttribute(a.Type, a.Values...)
	}
	return res
}
