package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/starford/snapcurator/internal/models"
	"github.com/starford/snapcurator/internal/views"
)

func categoryFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "category",
		Usage: "Recommendation category",
		Value: models.CategoryPopular,
	}
}

func categoriesCommand() *cli.Command {
	return &cli.Command{
		Name:  "categories",
		Usage: "List the recommendation categories",
		Action: withSession(func(ctx context.Context, _ *cli.Command, s *session) error {
			v := views.NewCategories(s.client)
			defer v.Close()
			v.Mount(ctx)
			if err := s.emit(v.Items(), func(w io.Writer) {
				rows := make([][]string, 0, len(v.Items()))
				for _, c := range v.Items() {
					rows = append(rows, []string{c.ID, c.Name, c.Description})
				}
				renderTable(w, []string{"ID", "Name", "Description"}, rows)
			}); err != nil {
				return err
			}
			return s.done(v.Error())
		}),
	}
}

func overviewCommand() *cli.Command {
	return &cli.Command{
		Name:  "overview",
		Usage: "Show the dashboard categories side by side",
		Action: withSession(func(ctx context.Context, _ *cli.Command, s *session) error {
			o := views.NewOverview(s.client)
			defer o.Close()
			o.Mount(ctx)

			var firstErr string
			out := make(map[string][]models.Snap, len(o.Lists))
			for _, l := range o.Lists {
				out[l.Category] = l.Snaps()
				if msg := l.Error(); msg != "" && firstErr == "" {
					firstErr = msg
				}
			}
			err := s.emit(out, func(w io.Writer) {
				for i, l := range o.Lists {
					renderHeading(w, models.DashboardCategories[i].Label)
					if msg := l.Error(); msg != "" {
						fmt.Fprintln(w, msg)
						continue
					}
					renderTable(w, snapHeaders, snapRows(l.Snaps()))
				}
			})
			if err != nil {
				return err
			}
			return s.done(firstErr)
		}),
	}
}

func snapsCommand() *cli.Command {
	return &cli.Command{
		Name:  "snaps",
		Usage: "List the snaps of one category",
		Flags: []cli.Flag{categoryFlag()},
		Action: withSession(func(ctx context.Context, cmd *cli.Command, s *session) error {
			l := views.NewCategoryList(s.client, cmd.String("category"))
			defer l.Close()
			l.Mount(ctx)
			if err := s.emit(l.Snaps(), func(w io.Writer) {
				renderTable(w, snapHeaders, snapRows(l.Snaps()))
			}); err != nil {
				return err
			}
			return s.done(l.Error())
		}),
	}
}

func excludeCommand() *cli.Command {
	return &cli.Command{
		Name:      "exclude",
		Usage:     "Exclude a snap from a category",
		ArgsUsage: "SNAP_ID",
		Flags:     []cli.Flag{categoryFlag()},
		Action: withSession(func(ctx context.Context, cmd *cli.Command, s *session) error {
			snapID := cmd.Args().First()
			if snapID == "" {
				return errors.New("snap id is required")
			}
			l := views.NewCategoryList(s.client, cmd.String("category"))
			defer l.Close()

			out := l.Exclude(ctx, snapID)
			if msg := l.Error(); msg != "" || s.expired {
				return s.done(msg)
			}
			return s.emit(out.Data, func(w io.Writer) {
				fmt.Fprintf(w, "Excluded %s from %s\n", snapID, l.Category)
				renderTable(w, snapHeaders, snapRows(l.Snaps()))
			})
		}),
	}
}

func includeCommand() *cli.Command {
	return &cli.Command{
		Name:      "include",
		Usage:     "Put an excluded snap back into a category",
		ArgsUsage: "SNAP_ID",
		Flags:     []cli.Flag{categoryFlag()},
		Action: withSession(func(ctx context.Context, cmd *cli.Command, s *session) error {
			snapID := cmd.Args().First()
			if snapID == "" {
				return errors.New("snap id is required")
			}
			v := views.NewExcludedSnaps(s.client)
			defer v.Close()

			out := v.Include(ctx, snapID, cmd.String("category"))
			if msg := v.Error(); msg != "" || s.expired {
				return s.done(msg)
			}
			return s.emit(out.Data, func(w io.Writer) {
				fmt.Fprintf(w, "Included %s in %s\n", snapID, cmd.String("category"))
			})
		}),
	}
}

func excludedCommand() *cli.Command {
	return &cli.Command{
		Name:  "excluded",
		Usage: "List excluded snaps grouped by category",
		Action: withSession(func(ctx context.Context, _ *cli.Command, s *session) error {
			v := views.NewExcludedSnaps(s.client)
			defer v.Close()
			v.Mount(ctx)

			groups := v.Groups()
			if err := s.emit(groups, func(w io.Writer) {
				var rows [][]string
				for _, g := range groups {
					for _, sn := range g.Snaps {
						rows = append(rows, []string{g.Category.Name, sn.Name, sn.Title, sn.SnapID})
					}
				}
				renderTable(w, []string{"Category", "Name", "Title", "Snap ID"}, rows)
			}); err != nil {
				return err
			}
			return s.done(v.Error())
		}),
	}
}
