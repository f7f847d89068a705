package ldapserver

// LDAPResultCode mirrors the RFC 4511 resultCode ENUMERATED values this
// server is able to produce. Only a subset of the RFC 4511 table is
// named here.
type LDAPResultCode int

// Named result codes, per spec.md §4.4/§7. All of them except
// unwillingToPerform are returned by some operation of this server.
const (
	LDAPResultSuccess                LDAPResultCode = 0
	LDAPResultOperationsError        LDAPResultCode = 1
	LDAPResultProtocolError          LDAPResultCode = 2
	LDAPResultAuthMethodNotSupported LDAPResultCode = 7
	LDAPResultInvalidDNSyntax        LDAPResultCode = 34
	LDAPResultInvalidCredentials     LDAPResultCode = 49
	LDAPResultUnwillingToPerform     LDAPResultCode = 53
	LDAPResultOther                  LDAPResultCode = 80
)

// NoticeOfStartTLS is the StartTLS extended operation's OID, per spec.md
// §4.3/§6.
const NoticeOfStartTLS = "1.3.6.1.4.1.1466.20037"
