// keygen creates the signer key pair and self-signed certificate used by inkcrypt-server.
//
// The server creates the same material on first start; keygen exists so that keys can be
// provisioned ahead of deployment (for example into a secrets volume).
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/radwayousryyy/InkCrypt/internal/crypto"
	"github.com/radwayousryyy/InkCrypt/internal/logger"
	"github.com/radwayousryyy/InkCrypt/internal/version"
	"github.com/spf13/cobra"
)

var (
	outputDir    string
	keyType      string
	rsaSize      int
	commonName   string
	organization string
	validity     time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:               "keygen",
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		Short:             "Signer key generator for InkCrypt",
		Long:              "Generate the Ed25519 or RSA signer key pair and self-signed certificate used by inkcrypt-server",
	}

	v := version.Get()
	rootCmd.Version = fmt.Sprintf("%s (built %s, commit %s)", v.Version, v.BuildDate, v.GitCommit)

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new signing identity",
		Long: `Generate a new signing identity in the output directory.

If the directory already holds a complete identity it is loaded and reported, not replaced.`,
		RunE: runGenerate,
	}

	generateCmd.Flags().StringVarP(&outputDir, "outputdir", "o", "", "Output directory for the key material [required]")
	generateCmd.Flags().StringVarP(&keyType, "type", "t", string(crypto.KeyTypeEd25519), "Key type: rsa or ed25519")
	generateCmd.Flags().IntVarP(&rsaSize, "size", "s", 4096, "RSA key size in bits (2048 or 4096, default: 4096)")
	generateCmd.Flags().StringVar(&commonName, "cn", "InkCrypt Signer", "Certificate common name (reported as the document signer)")
	generateCmd.Flags().StringVar(&organization, "org", "InkCrypt", "Certificate organization")
	generateCmd.Flags().DurationVar(&validity, "validity", 365*24*time.Hour, "Certificate validity period")
	generateCmd.MarkFlagRequired("outputdir")

	rootCmd.AddCommand(generateCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if keyType != string(crypto.KeyTypeRSA) && keyType != string(crypto.KeyTypeEd25519) {
		return fmt.Errorf("invalid key type: %s (must be 'rsa' or 'ed25519')", keyType)
	}

	if keyType == string(crypto.KeyTypeRSA) && rsaSize != 2048 && rsaSize != 4096 {
		return fmt.Errorf("invalid RSA key size: %d (must be 2048 or 4096)", rsaSize)
	}

	if commonName == "" {
		return fmt.Errorf("--cn must not be empty")
	}

	// the identity manager logs what it did; keygen reports on stdout instead
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	if os.Getenv("LOG_LEVEL") != "" {
		quiet = logger.InitLogger(logger.ParseLogLevel(os.Getenv("LOG_LEVEL")), "dev")
	}

	id, err := crypto.EnsureSigningIdentity(crypto.KeyManagerConfig{
		KeysDir:      outputDir,
		KeyType:      crypto.KeyType(keyType),
		RSAKeySize:   rsaSize,
		CommonName:   commonName,
		Organization: organization,
		Validity:     validity,
	}, quiet)
	if err != nil {
		return fmt.Errorf("failed to create signing identity: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Signing identity in %s\n", outputDir)
	fmt.Fprintf(out, "  Private key: %s\n", filepath.Join(outputDir, crypto.PrivateKeyFile))
	fmt.Fprintf(out, "  Public key:  %s\n", filepath.Join(outputDir, crypto.PublicKeyFile))
	fmt.Fprintf(out, "  Certificate: %s\n", filepath.Join(outputDir, crypto.CertificateFile))
	fmt.Fprintf(out, "  Signer:      %s\n", id.SignerIdentity())
	fmt.Fprintf(out, "  Algorithm:   %s\n", id.Algorithm())
	fmt.Fprintf(out, "  Key ID:      %s\n", id.KeyID())
	fmt.Fprintf(out, "  Expires:     %s\n", id.Certificate().NotAfter.Format(time.RFC3339))

	if want, _ := crypto.KeyType(keyType).Algorithm(); want != id.Algorithm() {
		fmt.Fprintf(out, "\nnote: the existing %s key was kept; remove the directory to create a new %s key\n", id.Algorithm(), keyType)
	}
	return nil
}
