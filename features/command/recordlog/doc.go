// Package recordlog records an operator action as an immutable audit log.
//
// The operator is taken from the context (shell.WithOperator) and falls back to "unknown".
// actionAt is always stamped by the handler's clock, a command cannot set it.
package recordlog
