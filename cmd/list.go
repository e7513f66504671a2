package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/promptgate/promptgate/internal/promptfile"
)

func newListCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List local prompt YAML files and their prompts",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := promptfile.List(dir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(paths) == 0 {
				fmt.Fprintf(out, "No prompt files found in %s\n", dir)
				return nil
			}

			for _, path := range paths {
				file, err := promptfile.Load(path)
				if err != nil {
					fmt.Fprintf(out, "%s: %v\n", path, err)
					continue
				}

				fmt.Fprintf(out, "%s\n", path)
				for name, spec := range file {
					version := spec.Version
					if version == "" {
						version = "-"
					}
					fmt.Fprintf(out, "  %s (version %s)\n", name, version)
					if spec.Description != "" {
						fmt.Fprintf(out, "    %s\n", spec.Description)
					}
					if len(spec.Techniques) > 0 {
						fmt.Fprintf(out, "    techniques: %s\n", strings.Join(spec.Techniques, ", "))
					}
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "prompts", "Directory holding prompt YAML files")

	return cmd
}
