package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quotebook/internal/app"
	"github.com/jsamuelsen/quotebook/internal/domain"
)

// quoteFlags are the editable fields shared by add, edit and merge.
type quoteFlags struct {
	text   string
	author string
	tags   string
	fav    bool
}

func (f *quoteFlags) register(cmd *cobra.Command, withText, withFav bool) {
	if withText {
		cmd.Flags().StringVar(&f.text, "text", "", "quote text")
	}

	cmd.Flags().StringVar(&f.author, "author", "", "who said it")
	cmd.Flags().StringVar(&f.tags, "tags", "", "comma-separated tags")

	if withFav {
		cmd.Flags().BoolVar(&f.fav, "fav", false, "mark as favourite")
	}
}

// apply overrides the fields of d whose flags were given.
func (f *quoteFlags) apply(cmd *cobra.Command, d domain.Draft) domain.Draft {
	if cmd.Flags().Changed("text") {
		d.Text = domain.LooseString(f.text)
	}

	if cmd.Flags().Changed("author") {
		d.Author = domain.LooseString(f.author)
	}

	if cmd.Flags().Changed("tags") {
		d.Tags = domain.TagsFromString(f.tags)
	}

	if cmd.Flags().Changed("fav") {
		d.Fav = domain.Flag(f.fav)
	}

	return d
}

func newAddCmd(e *env) *cobra.Command {
	var f quoteFlags

	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a quote",
		Example: `  quotectl add "Ship often." --author Ada --tags process,dev
  quotectl add "Less is more." --fav`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := e.openStore(cmd.Context())
			if err != nil {
				return err
			}

			d := f.apply(cmd, domain.Draft{Text: domain.LooseString(args[0])})

			rec, err := store.Add(cmd.Context(), d)
			if err != nil {
				return err
			}

			return e.printRecord(cmd, "Added", rec)
		},
	}

	f.register(cmd, false, true)

	return cmd
}

func newListCmd(e *env) *cobra.Command {
	var (
		search    string
		favorites bool
		oldest    bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List quotes, newest first",
		Example: `  quotectl list
  quotectl list --search ship --favorites
  quotectl list --oldest --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := e.openStore(cmd.Context())
			if err != nil {
				return err
			}

			records := store.Query(domain.QueryParams{
				Search:          search,
				FavoritesOnly:   favorites,
				SortNewestFirst: !oldest,
			})

			if e.jsonOut {
				return writeDocument(cmd, records)
			}

			renderQuotes(cmd.OutOrStdout(), records)

			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "match text, author or tags")
	cmd.Flags().BoolVarP(&favorites, "favorites", "f", false, "favourites only")
	cmd.Flags().BoolVar(&oldest, "oldest", false, "oldest first")

	return cmd
}

func newEditCmd(e *env) *cobra.Command {
	var f quoteFlags

	cmd := &cobra.Command{
		Use:     "edit <id>",
		Short:   "Change the text, author or tags of a quote",
		Example: `  quotectl edit 1a2b3c --author "Grace Hopper" --tags history`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := e.openStore(cmd.Context())
			if err != nil {
				return err
			}

			id := args[0]

			current, ok := store.Get(id)
			if !ok {
				return domain.NewNotFoundError("quote", id)
			}

			rec, err := store.Update(cmd.Context(), id, f.apply(cmd, domain.DraftFromRecord(current)))
			if err != nil {
				return err
			}

			if rec == nil {
				return domain.NewNotFoundError("quote", id)
			}

			return e.printRecord(cmd, "Updated", *rec)
		},
	}

	f.register(cmd, true, false)

	return cmd
}

func newRmCmd(e *env) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a quote",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := e.service(cmd.Context(), nil)
			if err != nil {
				return err
			}

			_, err = svc.DeleteQuote(cmd.Context(), args[0], confirmer(cmd, yes))
			if errors.Is(err, app.ErrDeclined) {
				fmt.Fprintln(cmd.ErrOrStderr(), "Kept", args[0])
				return nil
			}

			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Deleted", args[0])

			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	return cmd
}

func newFavCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "fav <id>",
		Short: "Toggle the favourite mark of a quote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := e.openStore(cmd.Context())
			if err != nil {
				return err
			}

			rec, err := store.ToggleFavorite(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if rec == nil {
				return domain.NewNotFoundError("quote", args[0])
			}

			verb := "Unstarred"
			if rec.Fav {
				verb = "Starred"
			}

			return e.printRecord(cmd, verb, *rec)
		},
	}
}

func newCopyCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "copy <id>",
		Short: "Copy a quote to the clipboard as a citation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := e.service(cmd.Context(), nil)
			if err != nil {
				return err
			}

			citation, err := svc.CopyQuote(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Copied:", citation)

			return nil
		},
	}
}

func newStatsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show collection statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := e.openStore(cmd.Context())
			if err != nil {
				return err
			}

			stats := store.Stats()

			if e.jsonOut {
				return writeJSON(cmd, stats)
			}

			renderStats(cmd.OutOrStdout(), stats)

			return nil
		},
	}
}

// printRecord reports a single changed record.
func (e *env) printRecord(cmd *cobra.Command, verb string, rec domain.QuoteRecord) error {
	if e.jsonOut {
		return writeJSON(cmd, rec)
	}

	fmt.Fprintln(cmd.OutOrStdout(), verb, rec.ID)
	fmt.Fprintln(cmd.OutOrStdout(), renderQuote(rec))

	return nil
}
