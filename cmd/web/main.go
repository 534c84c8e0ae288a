package main

import (
	"fmt"
	"net"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/beechford-estate/smart-plans/pkg/server"
	"github.com/beechford-estate/smart-plans/pkg/services/config"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the Smart Plans API server",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to the config file (defaults apply when omitted)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(_ *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	filesDir := ""
	if cfg.Artifacts.Enabled {
		filesDir = cfg.Artifacts.OutputDir
		if err := os.MkdirAll(filesDir+"/outputs", 0o755); err != nil {
			return fmt.Errorf("failed to create artifact directory: %w", err)
		}
	}

	addr := cfg.Server.Addr
	if host, port := os.Getenv("SERVER_HOST"), os.Getenv("SERVER_PORT"); host != "" && port != "" {
		addr = net.JoinHostPort(host, port)
	}

	api := server.NewWebAPI(server.Config{
		Addr:             addr,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
		SolverTimeBudget: cfg.Solver.TimeBudget,
		FilesDir:         filesDir,
		Logger:           logger,
	})

	return api.Start()
}
