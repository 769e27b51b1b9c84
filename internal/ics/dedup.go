package ics

import (
	"crypto/sha1"
	"encoding/hex"
)

// UID hashes an identity key into a stable event uid:
// hex(sha1(key)) + "@" + domain.
func UID(identityKey, domain string) string {
	sum := sha1.Sum([]byte(identityKey))
	return hex.EncodeToString(sum[:]) + "@" + domain
}

// Deduper remembers every uid admitted during a run.
type Deduper struct {
	domain string
	seen   map[string]struct{}
}

func NewDeduper(domain string) *Deduper {
	return &Deduper{
		domain: domain,
		seen:   make(map[string]struct{}),
	}
}

// Admit returns the uid for identityKey and true the first time it is
// seen, or the uid and false for a repeat.
func (d *Deduper) Admit(identityKey string) (string, bool) {
	uid := UID(identityKey, d.domain)
	if _, dup := d.seen[uid]; dup {
		return uid, false
	}
	d.seen[uid] = struct{}{}
	return uid, true
}

// Len reports how many distinct uids were admitted.
func (d *Deduper) Len() int { return len(d.seen) }
