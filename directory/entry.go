// Package directory projects host account and group records onto
// synthesized LDAP entries, and evaluates the subset of RFC 4511 search
// filters this server supports against them.
package directory

import (
	"strconv"
	"strings"

	"github.com/dbaarda/entente/accounts"
)

// Attribute is a single named, multi-valued directory attribute.
// Attribute types are compared case-sensitively, per spec.
type Attribute struct {
	Type   string
	Values []string
}

// Entry is a transient, synthesized LDAP entry: a DN plus an ordered list
// of attributes.
type Entry struct {
	DN         string
	Attributes []Attribute
}

// Get returns the attribute with the given type, if present.
func (e *Entry) Get(typ string) (Attribute, bool) {
	for _, a := range e.Attributes {
		if a.Type == typ {
			return a, true
		}
	}
	return Attribute{}, false
}

func (e *Entry) add(typ string, values ...string) {
	e.Attributes = append(e.Attributes, Attribute{Type: typ, Values: values})
}

// UserEntry synthesizes a posixAccount entry from a password record, per
// the attribute table in spec.md §4.5. gecos2cn: cn is the first
// comma-delimited field of gecos, matching original_source/nss2ldap.c.
func UserEntry(basedn string, u accounts.User) Entry {
	e := Entry{DN: NameToDN(basedn, u.Name)}
	e.add("objectClass", "top", "account", "posixAccount")
	e.add("uid", u.Name)
	cn, _, _ := strings.Cut(u.Gecos, ",")
	e.add("cn", cn)
	e.add("userPassword", "{crypt}"+u.Passwd)
	e.add("uidNumber", strconv.Itoa(u.UID))
	e.add("gidNumber", strconv.Itoa(u.GID))
	e.add("gecos", u.Gecos)
	e.add("homeDirectory", u.Dir)
	e.add("loginShell", u.Shell)
	return e
}

// GroupEntry synthesizes a posixGroup entry from a group record, per the
// attribute table in spec.md §4.5.
func GroupEntry(basedn string, g accounts.Group) Entry {
	e := Entry{DN: GroupToDN(basedn, g.Name)}
	e.add("objectClass", "top", "posixGroup")
	e.add("cn", g.Name)
	e.add("userPassword", "{crypt}"+g.Passwd)
	e.add("gidNumber", strconv.Itoa(g.GID))
	e.add("memberUid", g.Members...)
	return e
}

// InRange reports whether v lies within any of the inclusive ranges.
func InRange(ranges []Range, v int) bool {
	if len(ranges) == 0 {
		return true
	}
	for _, r := range ranges {
		if v >= r.Min && v <= r.Max {
			return true
		}
	}
	return false
}

// Range is an inclusive numeric id range used to restrict which uid/gid
// records are projected into the directory.
type Range struct {
	Min, Max int
}
