package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/roach88/dimcheck/internal/shape"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainModel  = "dimcheck/model/v1"
	DomainResult = "dimcheck/result/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ModelHash computes the content-addressed identity of a model.
// Declaration order of variables and expressions is significant.
func ModelHash(m *Model) (string, error) {
	canonical, err := MarshalCanonical(m.Value())
	if err != nil {
		return "", fmt.Errorf("ModelHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainModel, canonical), nil
}

// ResultHash computes the identity of one inferred expression result.
// out is empty and reason non-empty for a failed inference.
func ResultHash(modelHash, name string, op shape.Op, operands []shape.Shape, out shape.Shape, reason string) (string, error) {
	ops := make(Array, len(operands))
	for i, s := range operands {
		ops[i] = DimsValue(s)
	}
	obj := Object{
		"model_hash": String(modelHash),
		"name":       String(name),
		"op":         String(op),
		"operands":   ops,
		"shape":      DimsValue(out),
		"reason":     String(reason),
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("ResultHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainResult, canonical), nil
}

// MustModelHash is like ModelHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustModelHash(m *Model) string {
	h, err := ModelHash(m)
	if err != nil {
		panic(err)
	}
	return h
}

// MustResultHash is like ResultHash but panics on error.
func MustResultHash(modelHash, name string, op shape.Op, operands []shape.Shape, out shape.Shape, reason string) string {
	h, err := ResultHash(modelHash, name, op, operands, out, reason)
	if err != nil {
		panic(err)
	}
	return h
}
