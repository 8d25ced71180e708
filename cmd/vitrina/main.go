package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vitrina/backend/internal/bootstrap"
	"github.com/vitrina/backend/internal/infrastructure/config"
)

var (
	categoryID   int
	approvedLine int
	logFile      string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "vitrina",
	Short: "Vitrina storefront tools",
	Long: `Vitrina browses a remote product catalog and keeps a shopping cart.

Run "vitrina shell" for an interactive session against the configured
catalog source and cart storage.`,
	SilenceUsage: true,
}

// shellCmd starts the interactive storefront
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive storefront session",
	Long: `Opens the terminal storefront on a fixed session (session.shell_id), so
the cart survives between runs when a persistent storage driver is set.

When both --category and --line are given the catalog is loaded right away.

Example:
  vitrina shell --category 5 --line 2`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func init() {
	shellCmd.Flags().IntVar(&categoryID, "category", 0, "category id to load on start")
	shellCmd.Flags().IntVar(&approvedLine, "line", 0, "approved line id to load on start")
	shellCmd.Flags().StringVar(&logFile, "log-file", "vitrina-shell.log", "where the shell writes its logs")
	rootCmd.AddCommand(shellCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runShell(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Logs go to a file so they do not interleave with the prompt
	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{LogOutput: logFile})
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Close(closeCtx); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "error releasing resources:", err)
		}
	}()

	sess, err := app.Sessions.Open(ctx, cfg.Session.ShellID)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	app.Logger.Info("Shell session opened", zap.String("session_id", sess.ID))

	sh := newShell(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), sess, app.Loader, app.Cart, app.Inquiry)
	if cmd.Flags().Changed("category") && cmd.Flags().Changed("line") {
		sh.exec("load " + strconv.Itoa(categoryID) + " " + strconv.Itoa(approvedLine))
	}
	return sh.run()
}
