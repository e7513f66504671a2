package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/promptgate/promptgate/internal/config"
	"github.com/promptgate/promptgate/internal/promptfile"
)

func newPullCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "pull <prompt>...",
		Short: "Pull prompts from the hub into local YAML files",
		Long: `Pull the latest version of each named prompt from the hub and write it to
the local prompts directory. Two files are written per prompt: the raw
role-tagged message templates, and a normalized spec with the system and
user templates extracted for editing.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			client := newHubClient(cfg)
			out := cmd.OutOrStdout()

			for _, name := range args {
				prompt, err := client.Pull(cmd.Context(), name)
				if err != nil {
					return err
				}

				rawPath := filepath.Join(outDir, name+".raw.yml")
				if err := promptfile.Save(rawPath, promptfile.File{
					name: {
						Description: prompt.Description,
						Messages:    prompt.Messages,
						Tags:        prompt.Tags,
					},
				}); err != nil {
					return err
				}

				system, user := prompt.SystemAndUser()
				spec := &promptfile.Spec{
					Description:  prompt.Description,
					SystemPrompt: system,
					UserPrompt:   user,
					Tags:         prompt.Tags,
				}
				if prompt.CommitHash != "" {
					spec.Metadata = map[string]any{"commit_hash": prompt.CommitHash}
				}

				path := filepath.Join(outDir, name+".yml")
				if err := promptfile.Save(path, promptfile.File{name: spec}); err != nil {
					return err
				}

				fmt.Fprintf(out, "Pulled %s (commit %s)\n", name, prompt.CommitHash)
				fmt.Fprintf(out, "  raw:        %s\n", rawPath)
				fmt.Fprintf(out, "  normalized: %s\n", path)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "prompts", "Directory to write prompt YAML files to")

	return cmd
}
