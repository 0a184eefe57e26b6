package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/zulandar/stagedocs/internal/resolve"
)

func newContentCmd() *cobra.Command {
	var (
		configPath string
		byName     bool
		extended   bool
		pretty     bool
	)

	cmd := &cobra.Command{
		Use:   "content <key>...",
		Short: "Print file content for one or more file ids or names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			ctx := context.Background()
			a, err := newApp(ctx, cfg, appOpts{LogOut: cmd.ErrOrStderr(), NoCache: true})
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			opts := resolve.ContentOptions{Extended: extended}
			var out map[string]resolve.ContentEntry
			if byName {
				out, err = a.content.ByNames(ctx, args, opts)
			} else {
				out, err = a.content.ByIDs(ctx, args, opts)
			}
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out, pretty)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "stagedocs.yaml", "path to stagedocs config file")
	cmd.Flags().BoolVar(&byName, "by-name", false, "treat keys as file names instead of ids")
	cmd.Flags().BoolVar(&extended, "extended", false, "include comments and versions")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent JSON output")
	return cmd
}
