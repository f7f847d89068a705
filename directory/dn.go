package directory

import "strings"

// Exactly the two DN shapes this server ever emits or parses: no
// escaping, no alternative attribute orderings, exact byte equality, per
// spec.md §3 and §6.

// NameToDN returns "uid=<name>,ou=people,<basedn>".
func NameToDN(basedn, name string) string {
	return "uid=" + name + ",ou=people," + basedn
}

// GroupToDN returns "cn=<name>,ou=groups,<basedn>".
func GroupToDN(basedn, name string) string {
	return "cn=" + name + ",ou=groups," + basedn
}

// DNToName extracts name from "uid=<name>,ou=people,<basedn>", returning
// ok=false if dn does not have exactly that shape for the given basedn.
// Mirrors original_source/nss2ldap.c's dn2name.
func DNToName(basedn, dn string) (name string, ok bool) {
	const prefix = "uid="
	suffix := ",ou=people," + basedn
	if !strings.HasPrefix(dn, prefix) || !strings.HasSuffix(dn, suffix) {
		return "", false
	}
	name = dn[len(prefix) : len(dn)-len(suffix)]
	if name == "" || strings.Contains(name, ",") {
		return "", false
	}
	return name, true
}
