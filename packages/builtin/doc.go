// Package builtin provides dynamic value functions for request templates.
//
// Available functions:
//   - now(): current UTC time in RFC 3339
//   - timestamp() / timestampMs(): current Unix time in seconds / milliseconds
//   - uuid(): random UUID v4
//   - randomInt(min, max): random integer in range (default 0..100)
//   - randomString(length): random alphanumeric string (default 16)
//   - randomEmail(): plausible throwaway address
//   - base64(value) / base64Decode(value)
//   - sha256(value): hex digest
//   - urlEncode(value) / urlDecode(value)
//   - date(layout): current UTC date, Go reference layout (default 2006-01-02)
//
// Functions are invoked with the {{name(args)}} placeholder syntax.
package builtin
