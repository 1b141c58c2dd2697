package connect

import (
	"context"
	"time"

	"connectrpc.com/connect"
	zlog "github.com/rs/zerolog/log"
)

// NewLoggingInterceptor creates an interceptor that logs each unary call's
// procedure, outcome, and latency at debug level.
func NewLoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			elapsed := time.Since(start)

			if err != nil {
				zlog.Debug().Msgf("rpc failed: procedure=%s code=%s elapsed=%s err=%v",
					req.Spec().Procedure, connect.CodeOf(err), elapsed, err)
				return resp, err
			}
			zlog.Debug().Msgf("rpc: procedure=%s peer=%s elapsed=%s",
				req.Spec().Procedure, req.Peer().Addr, elapsed)
			return resp, nil
		}
	}
}
