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
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newConfigTestCmd() (*cobra.Command, *string, *int, *time.Duration) {
	cmd := &cobra.Command{Use: "test"}
	backend := cmd.Flags().String("backend", "", "")
	attempts := cmd.Flags().Int("max-attempts", 3, "")
	timeout := cmd.Flags().Duration("verify-timeout", 5*time.Minute, "")
	return cmd, backend, attempts, timeout
}

func TestApplyConfigDefaults_ConfigSuppliesUnsetFlags(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("backend", "dafny")
	viper.Set("max_attempts", 7)
	viper.Set("verify_timeout", "90s")

	cmd, backend, attempts, timeout := newConfigTestCmd()
	applyConfigDefaults(cmd)

	if *backend != "dafny" {
		t.Errorf("expected backend dafny, got %q", *backend)
	}
	if *attempts != 7 {
		t.Errorf("expected 7 attempts, got %d", *attempts)
	}
	if *timeout != 90*time.Second {
		t.Errorf("expected 90s timeout, got %s", *timeout)
	}
}

func TestApplyConfigDefaults_CommandLineWins(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("backend", "dafny")

	cmd, backend, _, _ := newConfigTestCmd()
	if err := cmd.Flags().Set("backend", "z3"); err != nil {
		t.Fatal(err)
	}
	applyConfigDefaults(cmd)

	if *backend != "z3" {
		t.Errorf("explicit flag must beat the config file, got %q", *backend)
	}
}

func TestApplyConfigDefaults_EnvSuppliesUnsetFlags(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.SetEnvPrefix("axiomforge")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	t.Setenv("AXIOMFORGE_MAX_ATTEMPTS", "9")

	cmd, _, attempts, _ := newConfigTestCmd()
	applyConfigDefaults(cmd)

	if *attempts != 9 {
		t.Errorf("expected env to supply 9 attempts, got %d", *attempts)
	}
}
