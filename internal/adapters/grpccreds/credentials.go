// Package grpccreds bridges an instrumented stdtls context into gRPC
// transport credentials, so gRPC dials flow through the same wrapped
// verifier and selector as raw connections.
package grpccreds

import (
	"fmt"

	"google.golang.org/grpc/credentials"

	"github.com/sufield/tlsdiag/internal/adapters/stdtls"
)

// ClientCredentials builds gRPC transport credentials from an initialized
// context. Every handshake performed by gRPC runs the context's installed
// trust verifier and identity selector, with all their diagnostic logging.
func ClientCredentials(ctx *stdtls.Context, serverName string) (credentials.TransportCredentials, error) {
	if !ctx.Initialized() {
		return nil, fmt.Errorf("security context must be initialized before building credentials")
	}
	cfg, err := ctx.ClientConfig(serverName)
	if err != nil {
		return nil, fmt.Errorf("building client TLS config: %w", err)
	}
	return credentials.NewTLS(cfg), nil
}
