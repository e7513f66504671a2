package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/promptgate/promptgate/internal/config"
	"github.com/promptgate/promptgate/internal/hub"
	"github.com/promptgate/promptgate/internal/promptfile"
)

func newPushCmd() *cobra.Command {
	var (
		file   string
		only   string
		public bool
	)

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Validate local prompts and publish them to the hub",
		Long: `Load a prompt YAML file, validate every prompt in it (structure, roles,
placeholders, documented techniques), build the role-tagged message
templates, and push them to the hub. Validation failures abort the push
before anything is published.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			prompts, err := promptfile.Load(file)
			if err != nil {
				return err
			}

			// Validate everything up front so a bad prompt never leaves a
			// partially pushed file behind.
			for name, spec := range prompts {
				if only != "" && name != only {
					continue
				}
				if problems := promptfile.Validate(spec); len(problems) > 0 {
					return fmt.Errorf("prompt %q failed validation:\n  - %s",
						name, strings.Join(problems, "\n  - "))
				}
			}

			client := newHubClient(cfg)
			out := cmd.OutOrStdout()
			pushed := 0

			for name, spec := range prompts {
				if only != "" && name != only {
					continue
				}

				messages, err := promptfile.BuildMessages(spec)
				if err != nil {
					return fmt.Errorf("prompt %q: %w", name, err)
				}

				url, err := client.Push(cmd.Context(), name, messages, hub.PushOptions{
					Public:      public,
					Description: promptfile.PushDescription(spec),
					Tags:        spec.Tags,
				})
				if err != nil {
					return fmt.Errorf("failed to push prompt %q: %w", name, err)
				}

				pushed++
				fmt.Fprintf(out, "Pushed %s\n", name)
				fmt.Fprintf(out, "  %s\n", url)
			}

			if pushed == 0 {
				return fmt.Errorf("no prompt named %q in %s", only, file)
			}

			fmt.Fprintf(out, "\nPushed %d prompt(s). Run 'promptgate eval' to validate them.\n", pushed)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "prompts/prompts.yml", "Prompt YAML file to push")
	cmd.Flags().StringVar(&only, "prompt", "", "Push only this prompt from the file")
	cmd.Flags().BoolVar(&public, "public", false, "Publish the prompts publicly")

	return cmd
}
