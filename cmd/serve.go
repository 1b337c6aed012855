package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-places/internal/config"
	"github.com/kozaktomas/photo-places/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve <photo-dir>",
	Short: "Group photos and serve the result over HTTP",
	Long: `Run the grouping once, then serve places, events and run statistics
as JSON under /api/v1 until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	addPipelineFlags(serveCmd)
	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" && !cmd.Flags().Changed("port") {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" && !cmd.Flags().Changed("host") {
		host = envHost
	}
	return port, host
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	port, host := resolveServeHostPort(cmd)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Interrupts during the grouping run cancel it.
	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal...")
		cancel()
	}()

	result, err := runPipeline(ctx, cmd, cfg, args[0])
	if err != nil {
		return err
	}
	printStats(result.Stats)

	server := web.NewServer(result, port, host, cfg.Web.AllowedOrigins)

	go func() {
		<-ctx.Done()
		fmt.Println("Shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("\nServing results on http://%s:%d/api/v1\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
