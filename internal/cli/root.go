// Package cli provides the command-line interface for TLS diagnostics:
// probing live endpoints with instrumented handshakes and inspecting
// certificate material offline.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tlsdiag",
	Short: "Diagnostic instrumentation for TLS handshakes and certificates",
	Long: `Diagnostic instrumentation for TLS handshakes and certificates.

tlsdiag wraps the trust-verification, identity-selection and connection
machinery of a TLS context so every security decision is logged without
changing its outcome. Use this CLI to probe live endpoints with an
instrumented handshake or to inspect certificate files offline.`,
}

// Execute runs the root command and returns the first error it produced.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("format", "text", "Output format (text|json)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug|info|warn)")
}
