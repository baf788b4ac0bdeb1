// Package logging provides concrete implementations of the mdv.Logger
// interface.
package logging
