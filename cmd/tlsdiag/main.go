// tlsdiag is the command-line interface for the TLS diagnostic
// instrumentation library.
//
// It probes live TLS endpoints with fully instrumented handshakes and
// inspects certificate files offline:
//   - Diagnosing handshake failures against a live endpoint
//   - Rendering negotiated session state as a diagnostic report
//   - Checking certificate validity windows in PEM files
//
// Usage:
//
//	tlsdiag diagnose <host:port> [flags]
//	tlsdiag inspect <pem-file>... [flags]
//	tlsdiag --help
package main

import (
	"fmt"
	"os"

	"github.com/sufield/tlsdiag/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
