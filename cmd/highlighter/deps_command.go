package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rywkoo/highlight-clipper/internal/preflight"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	var presetName string
	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Check external binaries, working directories and services",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			preset, err := cfg.Preset(presetName)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			statuses := preflight.CheckSystemDeps(cmd.Context(), cfg, preset.Providers)
			rows := make([][]string, 0, len(statuses))
			for _, s := range statuses {
				state := "ok"
				detail := s.Path
				if !s.Available {
					state = "missing"
					if s.Optional {
						state = "missing (optional)"
					}
					detail = s.Detail
				}
				rows = append(rows, []string{s.Name, state, s.Version, detail, s.Description})
			}
			fmt.Fprintln(out, renderTable(tableSpec{
				Title:    "Binaries (preset " + preset.Name + ")",
				Headers:  []string{"Dependency", "Status", "Version", "Path", "Used for"},
				Rows:     rows,
				MaxWidth: map[int]int{3: 48},
			}))

			for _, line := range renderSectionHeader("Checks", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, check := range preflight.RunAll(cmd.Context(), cfg, preset.Providers) {
				kind := statusOK
				if !check.Passed {
					kind = statusError
					if check.Advisory {
						kind = statusWarn
					}
				}
				fmt.Fprintln(out, renderStatusLine(check.Name, kind, check.Detail, colorize))
			}

			var missing []string
			for _, s := range statuses {
				if !s.Available && !s.Optional {
					missing = append(missing, s.Name)
				}
			}
			if len(missing) > 0 {
				return fmt.Errorf("missing required dependencies: %v", missing)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&presetName, "preset", "p", "", "Check the dependencies of this preset instead of pipeline.preset")
	return cmd
}
