/*
Copyright © 2025 The Axiomforge Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/axiomforge/axiomforge/internal/logger"
)

var version = "0.3.0"

var (
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "axiomforge",
	Short: "Requirements-to-verified-code refinement pipeline",
	Long: `Axiomforge turns natural-language requirements into formally verified
implementations by chaining four stages - specify, translate, synthesize,
verify - and refining whichever stage a failed verification traces back to.

Supported verification backends: fstar, dafny, coq, tla, z3

Use "axiomforge process --help" to run the full pipeline.`,
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		applyConfigDefaults(cmd)

		cfg := logger.DefaultConfig()
		switch strings.ToLower(viper.GetString("log_level")) {
		case "debug":
			cfg.Level = slog.LevelDebug
		case "warn":
			cfg.Level = slog.LevelWarn
		case "error":
			cfg.Level = slog.LevelError
		}
		cfg.Format = viper.GetString("log_format")
		logger.Init(cfg)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// applyConfigDefaults lets axiomforge.yaml and AXIOMFORGE_* environment
// variables supply a value for any flag not set on the command line. A flag
// named with dashes maps to the config key with underscores, so
// --max-attempts reads the key max_attempts and AXIOMFORGE_MAX_ATTEMPTS.
func applyConfigDefaults(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		// AutomaticEnv alone does not make IsSet see env-only keys.
		_ = viper.BindEnv(key)
		if !f.Changed && viper.IsSet(key) {
			_ = cmd.Flags().Set(f.Name, fmt.Sprintf("%v", viper.Get(key)))
		}
	})
}

// initConfig loads axiomforge.yaml (working directory, then $HOME) and
// AXIOMFORGE_* environment variables as flag defaults.
func initConfig() {
	viper.SetConfigName("axiomforge")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}

	viper.SetEnvPrefix("axiomforge")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// A missing config file is fine; everything has flag defaults.
	_ = viper.ReadInConfig()
}
