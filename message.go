package ldapserver

import (
	ldap "github.com/lor00x/goldap/message"
)

// Response constructors. The upstream nolta/ldapserver package these
// idioms are drawn from (NewBindResponse, NewSearchResultEntry,
// NewExtendedResponse, res.SetResultCode/SetDiagnosticMessage — all
// visible in nolta-ldapserver's examples/ and ps78674-ldapserver's
// examples/ssl) keeps this in a file that wasn't part of the retrieval
// pack; it is rebuilt here in the same shape.

func newBindResponse(code LDAPResultCode) ldap.BindResponse {
	r := ldap.NewBindResponse(int(code))
	return r
}

func newSearchResultDone(code LDAPResultCode) ldap.SearchResultDone {
	r := ldap.NewSearchResultDoneResponse(int(code))
	return r
}

func newExtendedResponse(code LDAPResultCode) ldap.ExtendedResponse {
	r := ldap.NewExtendedResponse(int(code))
	return r
}

// wrapMessage packages a protocolOp into an LDAPMessage tagged with the
// given message id, ready to encode with Connection.sendMessage.
func wrapMessage(messageID int, op ldap.ProtocolOp) ldap.LDAPMessage {
	m := ldap.NewLDAPMessageWithProtocolOp(op)
	m.SetMessageID(messageID)
	return m
}
