package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/livefeed/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a livefeed configuration file without starting the server.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  livefeed validate -c livefeed.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	origins := "none"
	if len(cfg.AllowedOrigins) > 0 {
		origins = strings.Join(cfg.AllowedOrigins, ", ")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Port:            %d\n", cfg.Port)
	fmt.Fprintf(out, "  Data dir:        %s\n", cfg.DataDir)
	fmt.Fprintf(out, "  Log level:       %s\n", cfg.Level())
	fmt.Fprintf(out, "  Session buffer:  %d\n", cfg.SessionBuffer)
	fmt.Fprintf(out, "  Write timeout:   %s\n", cfg.WriteTimeout.Duration())
	fmt.Fprintf(out, "  Allowed origins: %s\n", origins)

	return nil
}
