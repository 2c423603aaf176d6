package authcode

import (
	"strings"
)

// AllowList is the set of email domains permitted to authenticate.
// An empty list denies everything: fail closed, never open.
type AllowList struct {
	domains map[string]struct{}
}

// NewAllowList parses a comma-separated domain list from configuration.
func NewAllowList(csv string) AllowList {
	domains := make(map[string]struct{})
	for _, domain := range strings.Split(csv, ",") {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain == "" {
			continue
		}
		domains[domain] = struct{}{}
	}
	return AllowList{domains: domains}
}

// Allows reports whether the email's domain is on the list. The email must
// contain exactly one "@"; anything else is denied.
func (a AllowList) Allows(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if strings.Count(email, "@") != 1 {
		return false
	}

	domain := email[strings.Index(email, "@")+1:]
	if domain == "" {
		return false
	}

	_, ok := a.domains[domain]
	return ok
}

func (a AllowList) Empty() bool {
	return len(a.domains) == 0
}
