// Package runner executes suites of API calls.
//
// Each suite gets its own data accumulator, seeded from config data, the
// suite's data, $run_id, $suite, $env and the builtin magic variables.
// Calls of a suite run in order so later calls see what earlier ones
// saved; whole suites may run in parallel with a concurrency limit.
// A call passes when it completes and its response raises no violations.
package runner
