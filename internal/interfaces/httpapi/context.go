package httpapi

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/riskibarqy/daily-coupon/internal/domain/user"
	"github.com/riskibarqy/daily-coupon/internal/usecase"
)

type principalKey struct{}

// withPrincipal stores the authenticated caller and tags the request span.
func withPrincipal(ctx context.Context, p user.Principal) context.Context {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("enduser.id", p.UserID))
	return context.WithValue(ctx, principalKey{}, p)
}

func principalFromContext(ctx context.Context) (user.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(user.Principal)
	return p, ok
}

// userIDFromContext is the coupon owner for authorized routes.
func userIDFromContext(ctx context.Context) (string, error) {
	p, ok := principalFromContext(ctx)
	if !ok || p.UserID == "" {
		return "", fmt.Errorf("%w: missing principal", usecase.ErrUnauthorized)
	}
	return p.UserID, nil
}
