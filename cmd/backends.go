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
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/axiomforge/axiomforge/internal/backend"
)

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "List verification backends and their availability",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tAVAILABLE")
		for _, name := range backend.Names() {
			adapter, err := backend.Get(name)
			if err != nil {
				continue
			}
			status := "yes"
			if err := adapter.IsAvailable(ctx); err != nil {
				status = fmt.Sprintf("no (%v)", err)
			}
			fmt.Fprintf(w, "%s\t%s\n", name, status)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(backendsCmd)
}
