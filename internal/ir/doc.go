// Package ir provides the manifest intermediate representation for jsonlogic.
//
// A manifest declares one or more query aggregates. Each aggregate lists the
// columns a JSON Logic payload may filter on, in declaration order, together
// with the storage column each name binds to and the value type its operands
// must have.
//
// This package contains type definitions and canonical serialization only.
// All other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Column order is significant: it is the generated field order and the
//     order in which filters are applied
//   - All JSON tags use snake_case
//   - SpecHash is computed over RFC 8785 canonical JSON so it is stable
//     across platforms and map iteration order
package ir
