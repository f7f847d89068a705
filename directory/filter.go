package directory

import (
	ldap "github.com/lor00x/goldap/message"
)

// Supported reports whether f uses only and/or/not/equalityMatch/present
// elements, recursively. An unsupported element anywhere in the tree is a
// filter-level rejection, not a per-entry false (spec.md §4.5). This
// mirrors original_source/nss2ldap.c's Filter_ok.
func Supported(f ldap.Filter) bool {
	switch v := f.(type) {
	case ldap.FilterAnd:
		for _, sub := range v {
			if !Supported(sub) {
				return false
			}
		}
		return true
	case ldap.FilterOr:
		for _, sub := range v {
			if !Supported(sub) {
				return false
			}
		}
		return true
	case ldap.FilterNot:
		return Supported(v.Filter)
	case ldap.FilterEqualityMatch:
		return true
	case ldap.FilterPresent:
		return true
	default:
		return false
	}
}

// Matches evaluates f against e. The caller must have already confirmed
// Supported(f); Matches on an unsupported element returns false.
// Mirrors original_source/nss2ldap.c's Filter_matches.
func Matches(f ldap.Filter, e *Entry) bool {
	switch v := f.(type) {
	case ldap.FilterAnd:
		for _, sub := range v {
			if !Matches(sub, e) {
				return false
			}
		}
		return true
	case ldap.FilterOr:
		for _, sub := range v {
			if Matches(sub, e) {
				return true
			}
		}
		return false
	case ldap.FilterNot:
		return !Matches(v.Filter, e)
	case ldap.FilterEqualityMatch:
		attr, ok := e.Get(string(v.AttributeDesc()))
		if !ok {
			return false
		}
		want := string(v.AssertionValue())
		for _, val := range attr.Values {
			if val == want {
				return true
			}
		}
		return false
	case ldap.FilterPresent:
		_, ok := e.Get(string(v))
		return ok
	default:
		return false
	}
}
