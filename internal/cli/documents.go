package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var signOutput string

var signCmd = &cobra.Command{
	Use:   "sign <file.pdf>",
	Short: "Sign a PDF document",
	Long: `Upload a PDF to the server and save the signed copy.

The signed copy is written to signed_<name> next to the input unless --output is given.

Example:
  inkcrypt sign ./contract.pdf -o ./contract.signed.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := client.Sign(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		output := signOutput
		if output == "" {
			output = filepath.Join(filepath.Dir(args[0]), result.Filename)
		}
		if err := os.WriteFile(output, result.Document, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", output, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Signed: %s\n  uuid: %s\n", output, result.Identifier)
		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify <file.pdf>",
	Short: "Verify a PDF document",
	Long: `Upload a PDF to the server and print the verification verdict.

The command exits with a non-zero status unless the document is VALID.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		verdict, err := client.Verify(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %s\n", verdict.Confidence, verdict.Reason)
		if verdict.Valid {
			fmt.Fprintf(out, "  uuid:      %s\n  signer:    %s\n", verdict.UUID, verdict.Signer)
			if verdict.SignedAt != nil {
				fmt.Fprintf(out, "  signed at: %s\n", verdict.SignedAt.Format("2006-01-02 15:04:05 MST"))
			}
			return nil
		}
		return fmt.Errorf("document is not valid (%s)", strings.ToLower(verdict.Confidence))
	},
}

var revokeCmd = &cobra.Command{
	Use:   "revoke <uuid>",
	Short: "Revoke a signed document",
	Long:  `Mark a document revoked. Later verifications report REVOKED. Revocation cannot be undone.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := client.Revoke(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: %s\n", result.Message, args[0])
		return nil
	},
}

func init() {
	signCmd.Flags().StringVarP(&signOutput, "output", "o", "", "output path for the signed document")
}
