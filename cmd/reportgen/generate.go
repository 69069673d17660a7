package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/survey-report/internal/ai"
	"github.com/thywilljoshua/survey-report/internal/plan"
	"github.com/thywilljoshua/survey-report/internal/render"
	"github.com/thywilljoshua/survey-report/internal/report"
	"github.com/thywilljoshua/survey-report/internal/survey"
)

func (a *app) service(cmd *cobra.Command) (*report.Service, error) {
	gen, err := ai.New(cmd.Context(), a.cfg.AISettings())
	if err != nil {
		return nil, err
	}
	fonts, err := render.LoadFonts(a.cfg.Layout.Fonts)
	if err != nil {
		return nil, err
	}
	return report.NewService(a.cfg, gen, fonts, a.logger), nil
}

func loadRequest(path, requester string) (report.Request, error) {
	tr, user, err := survey.Load(path)
	if err != nil {
		return report.Request{}, err
	}
	if requester == "" {
		requester = user.ID
	}
	return report.Request{RequesterID: requester, User: user, Transcript: tr}, nil
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func generateCmd(a *app) *cobra.Command {
	var variant string
	var requester string

	cmd := &cobra.Command{
		Use:   "generate <transcript.json>",
		Short: "Generate one report from a survey transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := plan.ParseVariant(variant)
			if err != nil {
				return err
			}
			req, err := loadRequest(args[0], requester)
			if err != nil {
				return err
			}
			svc, err := a.service(cmd)
			if err != nil {
				return err
			}
			res, err := svc.Generate(cmd.Context(), v, req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVarP(&variant, "variant", "v", "basic", "report variant: basic|premium")
	cmd.Flags().StringVar(&requester, "requester", "", "requester id used in the output name (default: user id)")
	return cmd
}

func batchCmd(a *app) *cobra.Command {
	var variant string
	var concurrency int

	cmd := &cobra.Command{
		Use:   "batch <transcript.json>...",
		Short: "Generate reports for several transcripts concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := plan.ParseVariant(variant)
			if err != nil {
				return err
			}
			items := make([]report.BatchItem, 0, len(args))
			for _, path := range args {
				req, err := loadRequest(path, "")
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				items = append(items, report.BatchItem{Variant: v, Request: req})
			}
			svc, err := a.service(cmd)
			if err != nil {
				return err
			}
			out := svc.Batch(cmd.Context(), items, concurrency)
			if err := printJSON(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			for _, o := range out {
				if o.Err != nil {
					return fmt.Errorf("some reports failed")
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&variant, "variant", "v", "basic", "report variant: basic|premium")
	cmd.Flags().IntVar(&concurrency, "concurrency", 2, "reports generated at the same time")
	return cmd
}
