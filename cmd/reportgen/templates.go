package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/survey-report/internal/plan"
	"github.com/thywilljoshua/survey-report/internal/templates"
)

func templatesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage the template catalog",
	}

	var dir string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write placeholder pages for every missing template",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = a.cfg.Templates.Dir
			}
			var plans []plan.Plan
			for _, v := range []plan.Variant{plan.Basic, plan.Premium} {
				p, err := plan.For(v)
				if err != nil {
					return err
				}
				plans = append(plans, p)
			}
			created, err := templates.Scaffold(dir, plans...)
			for _, path := range created {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d templates created in %s\n", len(created), dir)
			return nil
		},
	}
	initCmd.Flags().StringVar(&dir, "dir", "", "template directory (default: templates.dir from config)")

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Verify that every template the reports need exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := templates.New(a.cfg.Templates.Dir)
			for _, v := range []plan.Variant{plan.Basic, plan.Premium} {
				p, err := plan.For(v)
				if err != nil {
					return err
				}
				if err := c.Validate(p); err != nil {
					return fmt.Errorf("%s templates: %w", v, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d templates ok\n", v, len(templates.Keys(p)))
			}
			return nil
		},
	}

	cmd.AddCommand(initCmd, checkCmd)
	return cmd
}
