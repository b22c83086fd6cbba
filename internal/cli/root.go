package cli

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/radwayousryyy/InkCrypt/internal/config"
	"github.com/radwayousryyy/InkCrypt/internal/logger"
	"github.com/radwayousryyy/InkCrypt/internal/version"
)

var (
	cfg       *config.ClientEnvironment
	appLogger *slog.Logger
	client    *Client

	// serverURL overrides INKCRYPT_SERVER_URL when set
	serverURL string
)

var rootCmd = &cobra.Command{
	Use:               "inkcrypt",
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	SilenceUsage:      true,
	Short:             "InkCrypt document provenance CLI",
	Long: `InkCrypt CLI signs PDF documents with an InkCrypt server, verifies them and revokes them.

The server address is read from INKCRYPT_SERVER_URL (default http://127.0.0.1:8000)
and can be overridden with --server.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.NewClientConfig()
		if err != nil {
			log.Printf("failed to load configuration: %v", err.Error())
			return err
		}

		appLogger = logger.InitLogger(logger.ParseLogLevel(cfg.LogLevel), "dev")

		baseURL := cfg.ServerURL
		if serverURL != "" {
			baseURL = serverURL
		}
		client, err = NewClient(baseURL, cfg.Timeout, appLogger)
		return err
	},
}

func Execute() {
	v := version.Get()
	rootCmd.Version = fmt.Sprintf("%s (built %s, commit %s)", v.Version, v.BuildDate, v.GitCommit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "InkCrypt server URL (overrides INKCRYPT_SERVER_URL)")

	rootCmd.AddCommand(signCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(revokeCmd)
}
