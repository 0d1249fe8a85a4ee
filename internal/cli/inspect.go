package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sufield/tlsdiag/internal/adapters/stdtls"
	"github.com/sufield/tlsdiag/internal/core/domain"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <pem-file>...",
	Short: "Inspect certificate files offline",
	Long: `Inspect one or more PEM certificate files without touching the network.

Each certificate is rendered with its subject, issuer, validity window and
current validity status. Expired or not-yet-valid certificates are flagged
prominently.

Example:
  tlsdiag inspect server.pem
  tlsdiag inspect roots.pem intermediate.pem --format json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("%w: failed to get format flag: %v", ErrUsage, err)
	}

	now := time.Now()
	var records []certificateReport
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("%w: reading %s: %v", ErrConfig, path, err)
		}
		certs, err := stdtls.ParseCertificatesPEM(data)
		if err != nil {
			return fmt.Errorf("%w: parsing %s: %v", ErrConfig, path, err)
		}
		for _, cert := range certs {
			record := domain.NewCertificateRecord(cert)
			records = append(records, certificateReport{
				File:              path,
				Subject:           record.Subject,
				Issuer:            record.Issuer,
				SerialNumber:      record.SerialNumber,
				NotBefore:         record.NotBefore,
				NotAfter:          record.NotAfter,
				SignatureAlgorithm: record.SignatureAlgorithm,
				SubjectAltNames:   record.SubjectAltNames,
				Status:            record.ValidityAt(now).String(),
				SelfSigned:        record.SelfSigned(),
			})
		}
	}

	switch format {
	case "json":
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(records)
	case "text":
		for i, r := range records {
			if i > 0 {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			printCertificateReport(cmd, r)
		}
		return nil
	default:
		return fmt.Errorf("%w: unsupported format %q, use 'text' or 'json'", ErrUsage, format)
	}
}

type certificateReport struct {
	File               string    `json:"file"`
	Subject            string    `json:"subject"`
	Issuer             string    `json:"issuer"`
	SerialNumber       string    `json:"serial_number"`
	NotBefore          time.Time `json:"not_before"`
	NotAfter           time.Time `json:"not_after"`
	SignatureAlgorithm string    `json:"signature_algorithm"`
	SubjectAltNames    []string  `json:"subject_alt_names,omitempty"`
	Status             string    `json:"status"`
	SelfSigned         bool      `json:"self_signed"`
}

func printCertificateReport(cmd *cobra.Command, r certificateReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "File       : %s\n", r.File)
	fmt.Fprintf(out, "Subject    : %s\n", r.Subject)
	fmt.Fprintf(out, "Issuer     : %s\n", r.Issuer)
	fmt.Fprintf(out, "Serial     : %s\n", r.SerialNumber)
	fmt.Fprintf(out, "Not Before : %s\n", r.NotBefore.Format(time.RFC3339))
	fmt.Fprintf(out, "Not After  : %s\n", r.NotAfter.Format(time.RFC3339))
	fmt.Fprintf(out, "Sig Alg    : %s\n", r.SignatureAlgorithm)
	if len(r.SubjectAltNames) > 0 {
		fmt.Fprintf(out, "SANs       : %v\n", r.SubjectAltNames)
	}
	if r.SelfSigned {
		fmt.Fprintf(out, "Self-Signed: true\n")
	}
	if r.Status == domain.ValidityValid.String() {
		fmt.Fprintf(out, "Status     : %s\n", r.Status)
	} else {
		fmt.Fprintf(out, "Status     : *** %s ***\n", r.Status)
	}
}
