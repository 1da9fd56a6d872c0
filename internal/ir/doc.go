// Package ir provides the canonical intermediate representation of dimcheck
// models.
//
// A Model declares leaf operands (variables, parameters, constants) with
// their shapes, and named expressions that combine operands with "add" or
// "matmul". The compiler produces Models from CUE; the checker consumes them.
//
// This package contains type definitions, canonical JSON and hashing only.
// All other internal packages may import ir; ir imports nothing internal
// except shape.
//
// Key design constraints:
//   - NO float types anywhere - dimensions and counts are integers
//   - Canonical JSON (RFC 8785 key order, NFC strings) is the only encoding
//     used for content-addressed identity
//   - All JSON tags use snake_case
package ir
