package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zulandar/stagedocs/internal/ident"
)

func newTreeCmd() *cobra.Command {
	var (
		configPath string
		project    int64
		assigned   bool
		noPrune    bool
		noCache    bool
		pretty     bool
	)

	cmd := &cobra.Command{
		Use:   "tree <userId>",
		Short: "Print a user's document tree as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := ident.ParseUserID(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id %q: %w", args[0], err)
			}
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			ctx := context.Background()
			a, err := newApp(ctx, cfg, appOpts{LogOut: cmd.ErrOrStderr(), NoCache: noCache})
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			opts := a.treeOptions()
			if cmd.Flags().Changed("project") {
				opts.ProjectID = &project
			}
			opts.AssignedOnly = assigned
			if noPrune {
				opts.Prune = false
			}
			t, err := a.trees.ForUser(ctx, user, opts)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), t, pretty)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "stagedocs.yaml", "path to stagedocs config file")
	cmd.Flags().Int64Var(&project, "project", 0, "restrict the tree to one project")
	cmd.Flags().BoolVar(&assigned, "assigned", false, "only include levels the user holds a RACI assignment on")
	cmd.Flags().BoolVar(&noPrune, "no-prune", false, "keep communities and phases with no documents")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the Redis tree cache")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent JSON output")
	return cmd
}
