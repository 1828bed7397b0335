package notes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ValentinKolb/qnclient/cmd/util"
	"github.com/ValentinKolb/qnclient/lib/notes"
	"github.com/spf13/cobra"
)

var (
	listCmd = &cobra.Command{
		Use:   "list [userIDHash]",
		Short: "Lists the notes of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := util.CommandContext()
			defer cancel()
			res, err := api.GetNotes(ctx, args[0])
			if err != nil {
				return err
			}
			if res.LoggedUser != nil {
				fmt.Printf("logged in as %s (%s)\n", res.LoggedUser.Handle, res.LoggedUser.HashID)
			}
			printNotes(res.Notes)
			return nil
		},
	}
	recentCmd = &cobra.Command{
		Use:   "recent",
		Short: "Lists the most recent public notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := util.CommandContext()
			defer cancel()
			list, err := api.GetRecentNotes(ctx)
			if err != nil {
				return err
			}
			printNotes(list)
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [noteHashID]",
		Short: "Prints a note including its content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := util.CommandContext()
			defer cancel()
			n, err := api.GetNote(ctx, args[0])
			if err != nil {
				return err
			}
			return util.PrintJSON(n)
		},
	}
	searchCmd = &cobra.Command{
		Use:   "search [userIDHash] [term]",
		Short: "Searches the notes of a user",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := util.CommandContext()
			defer cancel()
			term := strings.Join(args[1:], " ")
			res, err := api.SearchUserNotes(ctx, args[0], term)
			if err != nil {
				return err
			}
			if res == nil || len(res.Results) == 0 {
				fmt.Printf("no matches for %q\n", term)
				return nil
			}
			for _, r := range res.Results {
				fmt.Printf("%s\n", r.NoteIDStr)
				for _, item := range r.Items {
					fmt.Printf("  %4d: %s\n", item.LineNo, item.HTML)
				}
			}
			return nil
		},
	}
	userCmd = &cobra.Command{
		Use:   "user [userIDHash]",
		Short: "Prints the profile of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := util.CommandContext()
			defer cancel()
			info, err := api.GetUserInfo(ctx, args[0])
			if err != nil {
				return err
			}
			return util.PrintJSON(info)
		},
	}
	purgeCmd = &cobra.Command{
		Use:   "purge [noteHashID]",
		Short: "Deletes a note permanently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := util.CommandContext()
			defer cancel()
			msg, err := api.PermanentDeleteNote(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Println(msg)
			return nil
		},
	}

	// noteOps all take a note id and print the updated note
	noteOps = []*cobra.Command{
		noteOpCmd("star", "Stars a note", func(a *notes.API) noteOp { return a.StarNote }),
		noteOpCmd("unstar", "Removes the star of a note", func(a *notes.API) noteOp { return a.UnstarNote }),
		noteOpCmd("delete", "Moves a note to the trash", func(a *notes.API) noteOp { return a.DeleteNote }),
		noteOpCmd("undelete", "Restores a note from the trash", func(a *notes.API) noteOp { return a.UndeleteNote }),
		noteOpCmd("public", "Makes a note public", func(a *notes.API) noteOp { return a.MakeNotePublic }),
		noteOpCmd("private", "Makes a note private", func(a *notes.API) noteOp { return a.MakeNotePrivate }),
	}
)

type noteOp func(ctx context.Context, noteHashID string) (notes.Note, error)

// noteOpCmd builds a command for one of the single note operations.
// The api is resolved at run time since it is created in the pre-run hook.
func noteOpCmd(use, short string, op func(*notes.API) noteOp) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [noteHashID]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := util.CommandContext()
			defer cancel()
			n, err := op(api)(ctx, args[0])
			if err != nil {
				return err
			}
			printNotes([]notes.Note{n})
			return nil
		},
	}
}

func printNotes(list []notes.Note) {
	for _, n := range list {
		flags := ""
		if n.IsStarred() {
			flags += "*"
		}
		if n.IsPublic() {
			flags += "p"
		}
		if n.IsDeleted() {
			flags += "d"
		}
		fmt.Printf("%-14s %-3s %-9s %s  %s\n", n.IDVer(), flags, n.Format, n.UpdatedAt.Format(time.DateOnly), n.Title)
	}
	fmt.Printf("%d notes\n", len(list))
}
