package context

import (
	stdcontext "context"
	"strings"
)

type requestIDKey struct{}
type companyIDKey struct{}

// WithRequestID stores the inbound request id for log enrichment.
func WithRequestID(ctx stdcontext.Context, requestID string) stdcontext.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return stdcontext.WithValue(ctx, requestIDKey{}, requestID)
}

func RequestIDFromContext(ctx stdcontext.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDKey{}).(string)
	return value
}

// WithCompanyID tags the context with the company being served. It is used for
// logging only; engine operations always receive the company id explicitly.
func WithCompanyID(ctx stdcontext.Context, companyID string) stdcontext.Context {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return ctx
	}
	return stdcontext.WithValue(ctx, companyIDKey{}, companyID)
}

func CompanyIDFromContext(ctx stdcontext.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(companyIDKey{}).(string)
	return value
}
