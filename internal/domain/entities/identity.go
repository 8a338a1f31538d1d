package entities

import (
	"sort"
	"strings"
)

// Identity is a normalized contributor email, the unit of license consumption.
type Identity string

// NormalizeIdentity lower-cases and trims an email. It is idempotent.
func NormalizeIdentity(email string) Identity {
	return Identity(strings.ToLower(strings.TrimSpace(email)))
}

// IdentitySet is a set of normalized identities. The zero value is not usable;
// build one with NewIdentitySet.
type IdentitySet map[Identity]struct{}

// NewIdentitySet builds a set from raw emails, normalizing each one and
// dropping empty values.
func NewIdentitySet(emails ...string) IdentitySet {
	set := make(IdentitySet, len(emails))
	for _, email := range emails {
		set.Add(email)
	}
	return set
}

// Add normalizes the email and inserts it. Empty emails are ignored.
func (s IdentitySet) Add(email string) {
	identity := NormalizeIdentity(email)
	if identity == "" {
		return
	}
	s[identity] = struct{}{}
}

// Contains reports whether the (normalized) email is in the set.
func (s IdentitySet) Contains(email string) bool {
	_, ok := s[NormalizeIdentity(email)]
	return ok
}

// Union returns a new set holding the members of both sets.
func (s IdentitySet) Union(other IdentitySet) IdentitySet {
	result := make(IdentitySet, len(s)+len(other))
	for identity := range s {
		result[identity] = struct{}{}
	}
	for identity := range other {
		result[identity] = struct{}{}
	}
	return result
}

// Difference returns the members of s that are not in other.
func (s IdentitySet) Difference(other IdentitySet) IdentitySet {
	result := make(IdentitySet)
	for identity := range s {
		if _, licensed := other[identity]; !licensed {
			result[identity] = struct{}{}
		}
	}
	return result
}

// Sorted returns the members in lexical order.
func (s IdentitySet) Sorted() []Identity {
	result := make([]Identity, 0, len(s))
	for identity := range s {
		result = append(result, identity)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
