package requestdata

import "context"

var requestDataKey = struct{}{}

// RequestData is the per-request identity resolved by the identity
// middleware. UserID is the external identity provider's subject.
type RequestData struct {
	TokenString string
	UserID      string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(requestDataKey).(*RequestData); ok {
		return rd
	}
	return nil
}
