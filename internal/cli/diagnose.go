package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sufield/tlsdiag/internal/adapters/logging"
	"github.com/sufield/tlsdiag/internal/adapters/stdtls"
	"github.com/sufield/tlsdiag/internal/config"
	"github.com/sufield/tlsdiag/internal/core/services"
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose <host:port>",
	Short: "Probe a TLS endpoint with an instrumented handshake",
	Long: `Probe a TLS endpoint with a fully instrumented handshake.

Every trust-verification and identity-selection decision made during the
handshake is logged, and the negotiated session is rendered as a
diagnostic report afterwards. The handshake outcome itself is exactly
what an uninstrumented connection would produce.

Example:
  tlsdiag diagnose example.org:443 --ca roots.pem
  tlsdiag diagnose 10.0.0.5:8443 --ca roots.pem --cert client.pem --key client.key`,
	Args: cobra.ExactArgs(1),
	RunE: runDiagnose,
}

func init() {
	diagnoseCmd.Flags().String("config", "", "Configuration file (YAML)")
	diagnoseCmd.Flags().String("ca", "", "PEM file with trust anchors")
	diagnoseCmd.Flags().String("cert", "", "PEM file with the client certificate chain")
	diagnoseCmd.Flags().String("key", "", "PEM file with the client private key")
	diagnoseCmd.Flags().String("protocol", "", "Protocol name (TLS|TLSv1.2|TLSv1.3)")
	diagnoseCmd.Flags().String("server-name", "", "Expected server name (defaults to the target host)")
	diagnoseCmd.Flags().Duration("timeout", 0, "Connection timeout")

	diagnoseCmd.MarkFlagsRequiredTogether("cert", "key")

	rootCmd.AddCommand(diagnoseCmd)
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	cfg, err := diagnoseConfig(cmd)
	if err != nil {
		return err
	}

	host, port, err := splitTarget(args[0])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	levelFlag, _ := cmd.Flags().GetString("log-level")
	logger := logging.NewSlogLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logging.ParseLevel(levelFlag),
	}))

	if cfg.CAFile == "" {
		return fmt.Errorf("%w: a trust anchor file is required (--ca or config)", ErrConfig)
	}
	anchors, err := stdtls.LoadTrustAnchors(cfg.CAFile)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}

	var selector *stdtls.StaticSelector
	if cfg.CertFile != "" {
		bundle, err := stdtls.LoadIdentityBundle("client", cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrConfig, err)
		}
		selector = stdtls.NewStaticSelector(bundle)
	}

	inner, err := buildContext(cfg)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	facade := services.WrapUninitialized(inner, services.WithLogger(logger))
	if selector != nil {
		err = facade.Init(stdtls.NewStandardVerifier(anchors), selector)
	} else {
		err = facade.Init(stdtls.NewStandardVerifier(anchors), nil)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}

	ctx := cmd.Context()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	conn, err := facade.SocketFactory().DialContext(ctx, host, port)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrHandshake, err)
	}
	defer conn.Close()

	if err := conn.Handshake(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrHandshake, err)
	}

	session := facade.MostRecentSession()
	fmt.Fprint(cmd.OutOrStdout(), services.DiagnosticReport(session))
	return nil
}

// buildContext creates the crypto/tls context the configuration describes:
// protocol bounds, the SNI override and the client-certificate requirement
// for any server sockets it produces.
func buildContext(cfg *config.Config) (*stdtls.Context, error) {
	opts := []stdtls.ContextOption{stdtls.WithClientAuth(clientAuthMode(cfg.ClientAuth))}
	if cfg.ServerName != "" {
		opts = append(opts, stdtls.WithServerName(cfg.ServerName))
	}
	return stdtls.NewContext(cfg.Protocol, opts...)
}

func clientAuthMode(mode string) stdtls.ClientAuthMode {
	switch mode {
	case "want":
		return stdtls.RequestClientAuth
	case "need":
		return stdtls.RequireClientAuth
	default:
		return stdtls.NoClientAuth
	}
}

// diagnoseConfig merges the optional config file with command-line flags;
// flags win.
func diagnoseConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfig, err)
		}
		cfg = loaded
	}

	if v, _ := cmd.Flags().GetString("ca"); v != "" {
		cfg.CAFile = v
	}
	if v, _ := cmd.Flags().GetString("cert"); v != "" {
		cfg.CertFile = v
	}
	if v, _ := cmd.Flags().GetString("key"); v != "" {
		cfg.KeyFile = v
	}
	if v, _ := cmd.Flags().GetString("protocol"); v != "" {
		cfg.Protocol = v
	}
	if v, _ := cmd.Flags().GetString("server-name"); v != "" {
		cfg.ServerName = v
	}
	if v, _ := cmd.Flags().GetDuration("timeout"); v > 0 {
		cfg.Timeout = v
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return cfg, nil
}

func splitTarget(target string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(target)
	if err != nil {
		return "", 0, fmt.Errorf("target must be host:port: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return "", 0, fmt.Errorf("invalid port %q", portStr)
	}
	return host, port, nil
}
