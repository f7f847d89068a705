package directory

import (
	"testing"

	ldap "github.com/lor00x/goldap/message"

	"github.com/dbaarda/entente/accounts"
)

func TestDNRoundTrip(t *testing.T) {
	basedn := "dc=ex,dc=com"
	names := []string{"alice", "bob.smith", "a"}
	for _, n := range names {
		dn := NameToDN(basedn, n)
		got, ok := DNToName(basedn, dn)
		if !ok || got != n {
			t.Fatalf("DNToName(%q) = %q, %v, want %q, true", dn, got, ok, n)
		}
	}
}

func TestDNToNameRejectsMismatch(t *testing.T) {
	if _, ok := DNToName("dc=ex,dc=com", "cn=alice,ou=groups,dc=ex,dc=com"); ok {
		t.Fatal("expected group DN to be rejected as a user DN")
	}
	if _, ok := DNToName("dc=ex,dc=com", "uid=alice,ou=people,dc=other,dc=com"); ok {
		t.Fatal("expected DN under a different basedn to be rejected")
	}
}

func TestUserEntryAttributes(t *testing.T) {
	u := accounts.User{
		Name: "alice", Passwd: "x", UID: 1001, GID: 1001,
		Gecos: "Alice A,,,", Dir: "/home/alice", Shell: "/bin/sh",
	}
	e := UserEntry("dc=ex,dc=com", u)
	if e.DN != "uid=alice,ou=people,dc=ex,dc=com" {
		t.Fatalf("unexpected DN %q", e.DN)
	}
	if cn, ok := e.Get("cn"); !ok || cn.Values[0] != "Alice A" {
		t.Fatalf("cn = %+v, want Alice A", cn)
	}
	if pw, ok := e.Get("userPassword"); !ok || pw.Values[0] != "{crypt}x" {
		t.Fatalf("userPassword = %+v", pw)
	}
	if uidn, ok := e.Get("uidNumber"); !ok || uidn.Values[0] != "1001" {
		t.Fatalf("uidNumber = %+v", uidn)
	}
	if _, ok := e.Get("homeDirectory"); !ok {
		t.Fatal("expected homeDirectory to be present")
	}
}

func TestGroupEntryAttributes(t *testing.T) {
	g := accounts.Group{Name: "devs", Passwd: "x", GID: 2000, Members: []string{"alice", "bob"}}
	e := GroupEntry("dc=ex,dc=com", g)
	if e.DN != "cn=devs,ou=groups,dc=ex,dc=com" {
		t.Fatalf("unexpected DN %q", e.DN)
	}
	mem, ok := e.Get("memberUid")
	if !ok || len(mem.Values) != 2 {
		t.Fatalf("memberUid = %+v", mem)
	}
}

func TestInRange(t *testing.T) {
	if !InRange(nil, 42) {
		t.Fatal("no ranges configured should allow everything")
	}
	ranges := []Range{{Min: 1000, Max: 1999}, {Min: 5000, Max: 5000}}
	if !InRange(ranges, 1500) || !InRange(ranges, 5000) {
		t.Fatal("expected in-range values to pass")
	}
	if InRange(ranges, 2000) {
		t.Fatal("expected out-of-range value to fail")
	}
}

func TestFilterEvaluation(t *testing.T) {
	e := UserEntry("dc=ex,dc=com", accounts.User{
		Name: "alice", UID: 1001, GID: 1001, Gecos: "Alice A,,,",
		Dir: "/home/alice", Shell: "/bin/sh",
	})

	eq := ldap.NewFilterEqualityMatch("uid", "alice")
	if !Supported(eq) || !Matches(eq, &e) {
		t.Fatal("equalityMatch(uid, alice) should match")
	}

	eqWrong := ldap.NewFilterEqualityMatch("uid", "bob")
	if Matches(eqWrong, &e) {
		t.Fatal("equalityMatch(uid, bob) should not match alice")
	}

	present := ldap.FilterPresent("homeDirectory")
	if !Supported(present) || !Matches(present, &e) {
		t.Fatal("present(homeDirectory) should match")
	}

	and := ldap.FilterAnd{eq, present}
	if !Supported(and) || !Matches(and, &e) {
		t.Fatal("and(equalityMatch, present) should match")
	}

	not := ldap.FilterNot{Filter: eqWrong}
	if !Supported(not) || !Matches(not, &e) {
		t.Fatal("not(equalityMatch(uid,bob)) should match alice")
	}

	or := ldap.FilterOr{eqWrong, eq}
	if !Supported(or) || !Matches(or, &e) {
		t.Fatal("or(..., equalityMatch(uid,alice)) should match")
	}

	sub := ldap.FilterSubstrings{}
	if Supported(sub) {
		t.Fatal("substrings filter should be unsupported")
	}
}
