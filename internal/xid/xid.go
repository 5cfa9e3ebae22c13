// Package xid mints client-local identifiers.
package xid

import (
	"crypto/rand"
	"encoding/base32"
	"strings"
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// New returns a prefixed random id for identities that never reach the
// backend: draft documents awaiting a server id, and test fixtures.
// 80 bits of randomness; no timestamp, the ids need no ordering.
func New(prefix string) string {
	buf := make([]byte, 10)
	// crypto/rand.Read never fails.
	_, _ = rand.Read(buf)
	return prefix + "-" + strings.ToLower(encoding.EncodeToString(buf))
}
