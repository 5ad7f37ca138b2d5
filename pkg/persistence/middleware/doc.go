// Package middleware provides decorators for ports.StateStore.
package middleware
