package shell

import (
	"context"
	"strings"
)

// UnknownOperator is recorded when no operator identity is available.
const UnknownOperator = "unknown"

type operatorContextKey struct{}

// WithOperator returns a context carrying the identity of the acting operator.
// It is set by whatever resolves the caller's identity, e.g. an authentication middleware or the CLI.
func WithOperator(ctx context.Context, operator string) context.Context {
	return context.WithValue(ctx, operatorContextKey{}, strings.TrimSpace(operator))
}

// OperatorFrom returns the operator from the context, or UnknownOperator.
func OperatorFrom(ctx context.Context) string {
	if operator, ok := ctx.Value(operatorContextKey{}).(string); ok && operator != "" {
		return operator
	}

	return UnknownOperator
}
