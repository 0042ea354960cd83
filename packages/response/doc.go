// Package response inspects executed API calls.
//
// It provides:
//   - Select: pick a value out of a response by dotted path, optionally
//     narrowed with a regular expression
//   - Save: copy selected values into the shared data accumulator so later
//     calls can reference them as {{path}}
//   - Assert/AssertAll: compare selections with expected fields and JSON
//     schemas, producing Violation records instead of errors
//   - Process: save then assert, driven by a call descriptor
//
// Absent data is nil, never an error. Errors are reserved for malformed
// specs such as a pattern that does not compile.
package response
