// Package params parses command-line parameter values: key=value pairs for
// ad-hoc choice sets and .env files for credentials. Secrets are only ever
// read from the environment, never from flags.
package params
