package authz

import (
	"context"
	"errors"
	"strings"

	"connectrpc.com/connect"
)

// NewInterceptor attaches the bearer token's principal to the request
// context. Requests without a token pass through anonymous; the app layer
// decides whether that is allowed.
func NewInterceptor(tokens *Tokens) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			header := req.Header().Get("Authorization")
			if header == "" {
				return next(ctx, req)
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				return nil, connect.NewError(connect.CodeUnauthenticated, errMalformedHeader)
			}

			p, err := tokens.Parse(strings.TrimSpace(token))
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			return next(WithPrincipal(ctx, p), req)
		}
	}
}

var errMalformedHeader = errors.New("authorization header must be a bearer token")
