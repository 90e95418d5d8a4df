package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainQuery is the domain prefix for query spec hashes.
// Version suffix enables future algorithm migration.
const DomainQuery = "jsonlogic/query/v1"

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SpecHash computes the content-addressed identity of a query spec.
// Generated files embed it so a stale file can be detected without
// regenerating it.
//
// Column order participates in the hash: reordering columns changes the
// generated contract.
func SpecHash(spec QuerySpec) (string, error) {
	canonical, err := MarshalCanonical(spec.canonicalMap())
	if err != nil {
		return "", fmt.Errorf("SpecHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainQuery, canonical), nil
}

// MustSpecHash is like SpecHash but panics on error. For tests only.
func MustSpecHash(spec QuerySpec) string {
	h, err := SpecHash(spec)
	if err != nil {
		panic(err)
	}
	return h
}

func (q QuerySpec) canonicalMap() map[string]any {
	columns := make([]any, len(q.Columns))
	for i, c := range q.Columns {
		columns[i] = map[string]any{
			"name":   c.Name,
			"table":  c.Table,
			"column": c.Column,
			"type":   string(c.Type),
		}
	}
	joins := make([]any, len(q.Joins))
	for i, j := range q.Joins {
		joins[i] = j
	}
	return map[string]any{
		"name":    q.Name,
		"package": q.Package,
		"from":    q.From,
		"joins":   joins,
		"columns": columns,
	}
}
