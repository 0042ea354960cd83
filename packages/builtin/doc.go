// Package builtin provides magic variables for call templates.
//
// Magic variables are stored in the accumulator under names starting with
// $ and are regenerated before every call:
//   - $uuid: a random UUID v4
//   - $now: current time in RFC 3339
//   - $date: current date as 2006-01-02
//   - $timestamp: current Unix timestamp
//   - $timestampMs: current Unix timestamp in milliseconds
//   - $randomInt: random integer in [0, 1000)
//   - $randomString: random 16 character alphanumeric string
//   - $randomEmail: random email address
//
// They are referenced like any other path, e.g. {{$uuid}}.
package builtin
