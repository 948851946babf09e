// Package auth supplies bearer credentials for the realtime handshake.
//
// The transport session asks its TokenProvider for a credential once per
// connect attempt; providers that read external state (files, environment)
// therefore pick up rotated tokens on the next reconnect without any
// mid-connection coordination.
package auth

import (
	"os"
	"strings"
)

// TokenProvider supplies the current bearer credential, or reports that
// none is available.
type TokenProvider interface {
	Token() (string, bool)
}

// Static is a fixed token, typically sourced from configuration.
type Static string

// Token returns the static credential. An empty string reports absence.
func (s Static) Token() (string, bool) {
	return string(s), s != ""
}

// Env reads the token from an environment variable on every call.
type Env struct {
	Var string
}

// Token returns the variable's current value.
func (e Env) Token() (string, bool) {
	v := os.Getenv(e.Var)
	return v, v != ""
}

// File reads the token from a file on every call, so a rotated token file
// takes effect at the next connect.
type File struct {
	Path string
}

// Token returns the file contents with surrounding whitespace stripped.
func (f File) Token() (string, bool) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(string(data))
	return token, token != ""
}
