// Package env exposes environment variables to call templates.
//
// Variables collects the process environment and .env files into the
// mapping stored under the $env key of every suite's accumulator, so a
// call can reference {{$env.API_TOKEN}}.
package env
