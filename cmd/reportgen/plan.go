package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/thywilljoshua/survey-report/internal/plan"
)

var (
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2E86AB"))
	subStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	totalStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A23B72"))
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

func planCmd() *cobra.Command {
	var variant string
	var charsPerPage int

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the sections and page targets of a report variant",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := plan.ParseVariant(variant)
			if err != nil {
				return err
			}
			p, err := plan.For(v)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderPlan(p, charsPerPage))
			return nil
		},
	}
	cmd.Flags().StringVarP(&variant, "variant", "v", "premium", "report variant: basic|premium")
	cmd.Flags().IntVar(&charsPerPage, "chars-per-page", plan.DefaultCharsPerPage, "characters per page target")
	return cmd
}

func renderPlan(p plan.Plan, charsPerPage int) string {
	var blocks []string
	for i, s := range p.Sections {
		lines := []string{sectionStyle.Render(fmt.Sprintf("%d. %s  [%s, %.1f pages]", i+1, s.Title, s.Key, s.TargetPages()))}
		for j, sub := range s.Subsections {
			lines = append(lines, subStyle.Render(fmt.Sprintf("   %d.%d %s  %.1f pages, ~%d chars",
				i+1, j+1, sub.Description, sub.TargetPages, sub.TargetChars(charsPerPage))))
		}
		for j, title := range s.PageTitles {
			lines = append(lines, subStyle.Render(fmt.Sprintf("   page %d: %s", j+1, title)))
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	blocks = append(blocks, totalStyle.Render(fmt.Sprintf("%s: %d sections, %.1f target pages",
		p.Variant, len(p.Sections), p.TotalPages())))
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, blocks...))
}
