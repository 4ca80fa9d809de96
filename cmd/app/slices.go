package main

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/starford/snapcurator/internal/models"
	"github.com/starford/snapcurator/internal/request"
	"github.com/starford/snapcurator/internal/views"
)

func argAt(cmd *cli.Command, n int, name string) (string, error) {
	v := cmd.Args().Get(n)
	if v == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return v, nil
}

func slicesCommand() *cli.Command {
	return &cli.Command{
		Name:  "slices",
		Usage: "Manage editorial slices",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List editorial slices",
				Action: withSession(func(ctx context.Context, _ *cli.Command, s *session) error {
					v := views.NewEditorialSlices(s.client)
					defer v.Close()
					v.Mount(ctx)

					if err := s.emit(v.Slices(), func(w io.Writer) {
						rows := make([][]string, 0, len(v.Slices()))
						for _, sl := range v.Slices() {
							rows = append(rows, []string{sl.ID, sl.Name, fmt.Sprint(sl.SnapsCount), sl.Description})
						}
						renderTable(w, []string{"ID", "Name", "Snaps", "Description"}, rows)
					}); err != nil {
						return err
					}
					return s.done(v.Error())
				}),
			},
			{
				Name:      "show",
				Usage:     "Show one slice and its snaps",
				ArgsUsage: "SLICE_ID",
				Action: withSession(func(ctx context.Context, cmd *cli.Command, s *session) error {
					id, err := argAt(cmd, 0, "slice id")
					if err != nil {
						return err
					}
					v := views.NewSliceDetails(s.client, id)
					defer v.Close()
					out := v.Mount(ctx)
					if out.Data != nil {
						if err := printSlice(s, *out.Data); err != nil {
							return err
						}
					}
					return s.done(v.Error())
				}),
			},
			{
				Name:      "create",
				Usage:     "Create a slice",
				ArgsUsage: "NAME",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "description", Usage: "Slice description"},
				},
				Action: withSession(func(ctx context.Context, cmd *cli.Command, s *session) error {
					v := views.NewEditorialSlices(s.client)
					defer v.Close()
					if _, err := v.Create(ctx, cmd.Args().First(), cmd.String("description")); err != nil {
						return err
					}
					if msg := v.Error(); msg != "" || s.expired {
						return s.done(msg)
					}
					return s.emit(v.Slices(), func(w io.Writer) {
						fmt.Fprintf(w, "Created slice %q\n", cmd.Args().First())
					})
				}),
			},
			{
				Name:      "update",
				Usage:     "Rename a slice or change its description",
				ArgsUsage: "SLICE_ID",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "New slice name"},
					&cli.StringFlag{Name: "description", Usage: "New slice description"},
				},
				Action: withSession(func(ctx context.Context, cmd *cli.Command, s *session) error {
					id, err := argAt(cmd, 0, "slice id")
					if err != nil {
						return err
					}
					v := views.NewSliceDetails(s.client, id)
					defer v.Close()

					// Unset fields keep their current value.
					cur := v.Mount(ctx)
					if cur.Data == nil {
						return s.done(orGeneric(v.Error()))
					}
					name, desc := cur.Data.Name, cur.Data.Description
					if cmd.IsSet("name") {
						name = cmd.String("name")
					}
					if cmd.IsSet("description") {
						desc = cmd.String("description")
					}
					if _, err := v.Update(ctx, name, desc); err != nil {
						return err
					}
					return finishSliceEdit(s, v, fmt.Sprintf("Updated slice %s", id))
				}),
			},
			{
				Name:      "delete",
				Usage:     "Delete a slice",
				ArgsUsage: "SLICE_ID",
				Action: withSession(func(ctx context.Context, cmd *cli.Command, s *session) error {
					id, err := argAt(cmd, 0, "slice id")
					if err != nil {
						return err
					}
					v := views.NewSliceDetails(s.client, id)
					defer v.Close()
					out := v.Delete(ctx)
					if !v.Deleted() {
						return s.done(orGeneric(v.Error()))
					}
					return s.emit(out.Data, func(w io.Writer) {
						fmt.Fprintf(w, "Deleted slice %s\n", id)
					})
				}),
			},
			sliceMemberCommand("add-snap", "Add a snap to a slice", (*views.SliceDetails).AddSnap),
			sliceMemberCommand("remove-snap", "Remove a snap from a slice", (*views.SliceDetails).RemoveSnap),
		},
	}
}

func sliceMemberCommand(name, usage string,
	op func(*views.SliceDetails, context.Context, string) request.Outcome[models.Status],
) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "SLICE_ID SNAP_NAME",
		Action: withSession(func(ctx context.Context, cmd *cli.Command, s *session) error {
			id, err := argAt(cmd, 0, "slice id")
			if err != nil {
				return err
			}
			snap, err := argAt(cmd, 1, "snap name")
			if err != nil {
				return err
			}
			v := views.NewSliceDetails(s.client, id)
			defer v.Close()
			op(v, ctx, snap)
			return finishSliceEdit(s, v, v.Success())
		}),
	}
}

func finishSliceEdit(s *session, v *views.SliceDetails, confirmation string) error {
	if msg := v.Error(); msg != "" || s.expired {
		return s.done(msg)
	}
	if !s.json {
		fmt.Fprintln(s.out, confirmation)
	}
	if d := v.Outcome().Data; d != nil {
		return printSlice(s, *d)
	}
	return nil
}

func printSlice(s *session, d models.SliceDetail) error {
	return s.emit(d, func(w io.Writer) {
		renderHeading(w, d.Name)
		if d.Description != "" {
			fmt.Fprintln(w, d.Description)
		}
		renderTable(w, snapHeaders, snapRows(d.Snaps))
	})
}

// orGeneric returns msg, or the generic failure text when a call failed
// without a rendered message.
func orGeneric(msg string) string {
	if msg == "" {
		return request.GenericMessage
	}
	return msg
}
