package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/starford/snapcurator/internal/mcpserver"
	"github.com/starford/snapcurator/internal/models"
	"github.com/starford/snapcurator/internal/views"
)

func printCollector(s *session, info *models.CollectorInfo) error {
	if info == nil {
		return nil
	}
	return s.emit(info, func(w io.Writer) {
		fmt.Fprintf(w, "Last updated: %s\n", info.LastUpdated)
		rows := make([][]string, 0, len(info.PipelineSteps))
		for _, st := range info.PipelineSteps {
			rows = append(rows, []string{st.ID, st.Name, stepStatus(st), st.LastSuccessfulRun, st.LastFailedRun})
		}
		renderTable(w, []string{"Step", "Name", "Status", "Last success", "Last failure"}, rows)
	})
}

func collectorCommand() *cli.Command {
	return &cli.Command{
		Name:  "collector",
		Usage: "Inspect and drive the collector pipeline",
		Commands: []*cli.Command{
			{
				Name:  "status",
				Usage: "Show the latest run of every pipeline step",
				Action: withSession(func(ctx context.Context, _ *cli.Command, s *session) error {
					v := views.NewCollector(s.client)
					defer v.Close()
					out := v.Mount(ctx)
					if err := printCollector(s, out.Data); err != nil {
						return err
					}
					return s.done(v.Error())
				}),
			},
			{
				Name:      "run",
				Usage:     "Trigger one pipeline step (" + strings.Join(models.PipelineSteps, ", ") + ")",
				ArgsUsage: "STEP",
				Action: withSession(func(ctx context.Context, cmd *cli.Command, s *session) error {
					v := views.NewCollector(s.client)
					defer v.Close()
					if _, err := v.Run(ctx, cmd.Args().First()); err != nil {
						return err
					}
					if msg := v.Error(); msg != "" || s.expired {
						return s.done(msg)
					}
					if !s.json {
						fmt.Fprintln(s.out, v.Message())
					}
					return printCollector(s, v.Outcome().Data)
				}),
			},
		},
	}
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show the mutations recorded in the journal",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Usage: "Maximum number of entries", Value: 20},
		},
		Action: withSession(func(_ context.Context, cmd *cli.Command, s *session) error {
			if err := s.requireJournal(); err != nil {
				return err
			}
			entries, err := s.journal.Recent(int(cmd.Int("limit")))
			if err != nil {
				return err
			}
			return s.emit(entries, func(w io.Writer) {
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, []string{
						e.At.Local().Format("2006-01-02 15:04:05"),
						e.Method,
						e.Path,
						fmt.Sprint(e.Status),
						e.Outcome,
					})
				}
				renderTable(w, []string{"At", "Method", "Path", "Status", "Outcome"}, rows)
			})
		}),
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the curation tools over MCP on stdio",
		Action: withSession(func(_ context.Context, _ *cli.Command, s *session) error {
			return mcpserver.New(s.client, version).ServeStdio()
		}),
	}
}
