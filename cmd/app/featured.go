package main

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/starford/snapcurator/internal/models"
	"github.com/starford/snapcurator/internal/views"
)

func printBoard(s *session, snaps []models.FeaturedSnap) error {
	return s.emit(snaps, func(w io.Writer) {
		renderTable(w, featuredHeaders, featuredRows(snaps))
		if missing := models.FeaturedSlots - len(snaps); missing > 0 {
			fmt.Fprintf(w, "Add %d more snaps before saving\n", missing)
		}
	})
}

func featuredCommand() *cli.Command {
	return &cli.Command{
		Name:  "featured",
		Usage: "Edit the featured snaps list",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Show the current featured list",
				Action: withSession(func(ctx context.Context, _ *cli.Command, s *session) error {
					b := views.NewFeaturedBoard(s.client)
					defer b.Close()
					b.Mount(ctx)
					if msg := b.Error(); msg != "" || s.expired {
						return s.done(msg)
					}
					return printBoard(s, b.Snaps())
				}),
			},
			{
				Name:      "search",
				Usage:     "Search the store for snaps to feature",
				ArgsUsage: "QUERY",
				Action: withSession(func(ctx context.Context, cmd *cli.Command, s *session) error {
					search := views.NewStoreSearch(s.client)
					defer search.Close()
					hits, msg := search.Search(ctx, cmd.Args().First())
					if msg != "" || s.expired {
						return s.done(msg)
					}
					return s.emit(hits, func(w io.Writer) {
						rows := make([][]string, 0, len(hits))
						for _, h := range hits {
							rows = append(rows, []string{h.Package.Name, h.Package.DisplayName, h.Publisher.DisplayName, h.SnapID})
						}
						renderTable(w, []string{"Package", "Title", "Publisher", "Snap ID"}, rows)
					})
				}),
			},
			{
				Name:  "save",
				Usage: "Publish a featured ordering",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "draft", Usage: "Publish this draft instead of the current list"},
				},
				Action: withSession(func(ctx context.Context, cmd *cli.Command, s *session) error {
					b := views.NewFeaturedBoard(s.client)
					defer b.Close()

					if name := cmd.String("draft"); name != "" {
						if err := s.requireJournal(); err != nil {
							return err
						}
						snaps, err := s.journal.LoadDraft(name)
						if err != nil {
							return err
						}
						b.Restore(snaps)
					} else {
						b.Mount(ctx)
						if msg := b.Error(); msg != "" || s.expired {
							return s.done(msg)
						}
					}

					if _, err := b.Save(ctx); err != nil {
						return err
					}
					if msg := b.Error(); msg != "" || s.expired {
						return s.done(msg)
					}
					if !s.json {
						fmt.Fprintf(s.out, "Saved %d featured snaps\n", len(b.Snaps()))
					}
					return nil
				}),
			},
			draftCommand(),
		},
	}
}

// editDraft loads a draft into a board, applies edit and stores the result.
func editDraft(s *session, name string, edit func(b *views.FeaturedBoard) error) error {
	if err := s.requireJournal(); err != nil {
		return err
	}
	snaps, err := s.journal.LoadDraft(name)
	if err != nil {
		return err
	}
	b := views.NewFeaturedBoard(s.client)
	defer b.Close()
	b.Restore(snaps)

	if err := edit(b); err != nil {
		return err
	}
	if err := s.journal.SaveDraft(name, b.Snaps()); err != nil {
		return err
	}
	return printBoard(s, b.Snaps())
}

func draftCommand() *cli.Command {
	return &cli.Command{
		Name:  "draft",
		Usage: "Work on a featured ordering locally before publishing it",
		Commands: []*cli.Command{
			{
				Name:      "pull",
				Usage:     "Start a draft from the current featured list",
				ArgsUsage: "NAME",
				Action: withSession(func(ctx context.Context, cmd *cli.Command, s *session) error {
					name, err := argAt(cmd, 0, "draft name")
					if err != nil {
						return err
					}
					if err := s.requireJournal(); err != nil {
						return err
					}
					b := views.NewFeaturedBoard(s.client)
					defer b.Close()
					b.Mount(ctx)
					if msg := b.Error(); msg != "" || s.expired {
						return s.done(msg)
					}
					if err := s.journal.SaveDraft(name, b.Snaps()); err != nil {
						return err
					}
					return printBoard(s, b.Snaps())
				}),
			},
			{
				Name:      "show",
				Usage:     "Show a draft",
				ArgsUsage: "NAME",
				Action: withSession(func(_ context.Context, cmd *cli.Command, s *session) error {
					name, err := argAt(cmd, 0, "draft name")
					if err != nil {
						return err
					}
					if err := s.requireJournal(); err != nil {
						return err
					}
					snaps, err := s.journal.LoadDraft(name)
					if err != nil {
						return err
					}
					return printBoard(s, snaps)
				}),
			},
			{
				Name:      "add",
				Usage:     "Put a store snap at the front of a draft",
				ArgsUsage: "NAME PACKAGE",
				Action: withSession(func(ctx context.Context, cmd *cli.Command, s *session) error {
					name, err := argAt(cmd, 0, "draft name")
					if err != nil {
						return err
					}
					pkg, err := argAt(cmd, 1, "package name")
					if err != nil {
						return err
					}
					return editDraft(s, name, func(b *views.FeaturedBoard) error {
						search := views.NewStoreSearch(s.client)
						defer search.Close()
						hits, msg := search.Search(ctx, pkg)
						if msg != "" || s.expired {
							return s.done(msg)
						}
						for _, h := range hits {
							if h.Package.Name != pkg {
								continue
							}
							if !b.Add(h) {
								return fmt.Errorf("%s is already in draft %s", pkg, name)
							}
							return nil
						}
						return fmt.Errorf("no store snap named %s", pkg)
					})
				}),
			},
			{
				Name:      "remove",
				Usage:     "Drop a snap from a draft",
				ArgsUsage: "NAME PACKAGE",
				Action: withSession(func(_ context.Context, cmd *cli.Command, s *session) error {
					name, err := argAt(cmd, 0, "draft name")
					if err != nil {
						return err
					}
					pkg, err := argAt(cmd, 1, "package name")
					if err != nil {
						return err
					}
					return editDraft(s, name, func(b *views.FeaturedBoard) error {
						b.Remove(pkg)
						return nil
					})
				}),
			},
			{
				Name:      "move",
				Usage:     "Move a snap to the position of another one",
				ArgsUsage: "NAME PACKAGE OVER",
				Action: withSession(func(_ context.Context, cmd *cli.Command, s *session) error {
					name, err := argAt(cmd, 0, "draft name")
					if err != nil {
						return err
					}
					active, err := argAt(cmd, 1, "package name")
					if err != nil {
						return err
					}
					over, err := argAt(cmd, 2, "target package name")
					if err != nil {
						return err
					}
					return editDraft(s, name, func(b *views.FeaturedBoard) error {
						b.Move(active, over)
						return nil
					})
				}),
			},
			{
				Name:  "list",
				Usage: "List stored drafts",
				Action: withSession(func(_ context.Context, _ *cli.Command, s *session) error {
					if err := s.requireJournal(); err != nil {
						return err
					}
					drafts, err := s.journal.Drafts()
					if err != nil {
						return err
					}
					return s.emit(drafts, func(w io.Writer) {
						rows := make([][]string, 0, len(drafts))
						for _, d := range drafts {
							rows = append(rows, []string{d.Name, fmt.Sprint(d.Count), d.UpdatedAt.Local().Format("2006-01-02 15:04:05")})
						}
						renderTable(w, []string{"Name", "Snaps", "Updated"}, rows)
					})
				}),
			},
			{
				Name:      "delete",
				Usage:     "Delete a draft",
				ArgsUsage: "NAME",
				Action: withSession(func(_ context.Context, cmd *cli.Command, s *session) error {
					name, err := argAt(cmd, 0, "draft name")
					if err != nil {
						return err
					}
					if err := s.requireJournal(); err != nil {
						return err
					}
					return s.journal.DeleteDraft(name)
				}),
			},
		},
	}
}
