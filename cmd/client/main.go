// Package main is the GophStore command-line client: an interactive
// storefront shell plus one-shot store and inventory commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/atinyakov/GophStore/internal/client/api"
	"github.com/atinyakov/GophStore/internal/client/shell"
	"github.com/atinyakov/GophStore/internal/client/state"
	"github.com/atinyakov/GophStore/internal/client/storefront"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	version   string
	buildDate string
)

var (
	baseURL   string
	statePath string
	caPath    string
	verbose   bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:     "gophstore",
	Short:   "GophStore client for the defective products storefront",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !verbose {
			logger = zap.NewNop()
			return nil
		}
		config := zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		config.OutputPaths = []string{"stderr"}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	SilenceUsage: true,
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Browse and manage products interactively",
	RunE:  runShell,
}

var storesCmd = &cobra.Command{
	Use:   "stores",
	Short: "List the stores",
	RunE:  listStores,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show build version and date",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("GophStore Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:3000", "server base URL")
	rootCmd.PersistentFlags().StringVar(&statePath, "state", "storeAppState.json", "path to the session state file")
	rootCmd.PersistentFlags().StringVar(&caPath, "ca", "", "path to a CA bundle for HTTPS servers")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log API requests to stderr")

	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(storesCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(inventoryCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newAPIClient() (*api.Client, error) {
	hc, err := api.NewHTTPClient(caPath)
	if err != nil {
		return nil, err
	}
	c := api.New(baseURL, hc)
	c.Log = logger
	return c, nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// runShell starts the interactive storefront.
func runShell(cmd *cobra.Command, args []string) error {
	client, err := newAPIClient()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	out := cmd.OutOrStdout()
	view := shell.NewRenderer(out)
	session := state.NewSession(state.NewFileStore(statePath))
	ctrl := storefront.New(client, session, view)
	defer ctrl.Close()

	if err := ctrl.Init(ctx); err != nil {
		return err
	}
	prompt := shell.NewPrompter(cmd.InOrStdin(), out)
	return shell.New(ctrl, prompt, view, out).Run(ctx)
}

// listStores prints the store directory.
func listStores(cmd *cobra.Command, args []string) error {
	client, err := newAPIClient()
	if err != nil {
		return err
	}
	stores, err := client.Stores(cmd.Context())
	if err != nil {
		return err
	}
	shell.NewRenderer(cmd.OutOrStdout()).Stores(stores)
	return nil
}
