package middleware

import "context"

type contextKey string

const (
	ctxCustomerID    contextKey = "customer_id"
	ctxCustomerEmail contextKey = "customer_email"
	ctxCustomerName  contextKey = "customer_name"
)

func CustomerIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxCustomerID).(string); ok {
		return v
	}
	return ""
}

func CustomerEmailFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxCustomerEmail).(string); ok {
		return v
	}
	return ""
}

func CustomerNameFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxCustomerName).(string); ok {
		return v
	}
	return ""
}

// WithCustomerID injects the customer identifier into the context.
func WithCustomerID(ctx context.Context, customerID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCustomerID, customerID)
}
