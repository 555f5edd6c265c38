package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quotebook/internal/adapters/sinks"
	"github.com/jsamuelsen/quotebook/internal/app"
	"github.com/jsamuelsen/quotebook/internal/domain"
	"github.com/jsamuelsen/quotebook/internal/ports"
)

func newImportCmd(e *env) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the collection with a JSON document",
		Long: `Import replaces every stored quote with the quotes of a JSON document.
Use "-" to read the document from stdin; that requires --yes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "-" && !yes {
				return domain.NewValidationError("yes", "reading from stdin requires --yes")
			}

			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			svc, err := e.service(cmd.Context(), nil)
			if err != nil {
				return err
			}

			result, err := svc.Import(cmd.Context(), data, confirmer(cmd, yes))

			return reportImport(cmd, result, err)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	return cmd
}

func newFetchCmd(e *env) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "fetch <ref>...",
		Short: "Replace the collection with collections from the quote library",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := e.service(cmd.Context(), nil)
			if err != nil {
				return err
			}

			result, err := svc.ImportRemote(cmd.Context(), confirmer(cmd, yes), args...)

			return reportImport(cmd, result, err)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	return cmd
}

func reportImport(cmd *cobra.Command, result app.ReplaceResult, err error) error {
	if errors.Is(err, app.ErrDeclined) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Import cancelled")
		return nil
	}

	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d quotes\n", result.Imported)

	for _, skip := range result.Skipped {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped #%d: %s\n", skip.Index, skip.Reason)
	}

	return nil
}

func newExportCmd(e *env) *cobra.Command {
	var (
		out         string
		toClipboard bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the collection as JSON",
		Long: `Export writes the collection as a JSON document to stdout, to a file
with --out, or to the clipboard with --clipboard.`,
		Example: `  quotectl export > backup.json
  quotectl export --out stellar_quotes.json --clipboard`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var files ports.FileSink
			if out != "" {
				files = sinks.NewFixedPath(out)
			}

			svc, err := e.service(cmd.Context(), files)
			if err != nil {
				return err
			}

			result, err := svc.Export(cmd.Context(), app.ExportOptions{
				ToFile:      out != "",
				ToClipboard: toClipboard,
			})
			if err != nil {
				return err
			}

			if out == "" && !toClipboard {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), string(result.Document))
				return err
			}

			if result.Path != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d quotes to %s\n", result.Count, result.Path)
			}

			if toClipboard {
				fmt.Fprintf(cmd.ErrOrStderr(), "Copied %d quotes to the clipboard\n", result.Count)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write to this file")
	cmd.Flags().BoolVar(&toClipboard, "clipboard", false, "copy to the clipboard")

	return cmd
}

func newMergeCmd(e *env) *cobra.Command {
	var (
		base     string
		drafts   string
		toStdout bool
		f        quoteFlags
	)

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge new quotes into an old JSON document",
		Long: `Merge appends new quotes to the quotes of an old document and copies
the merged document to the clipboard. New quotes come from --drafts, a
JSON array, and from --text with the other field flags. The stored
collection is not changed.`,
		Example: `  quotectl merge --base old.json --drafts new.json
  quotectl merge --base old.json --text "Ship often." --tags dev --stdout`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var baseDoc []byte
			if base != "" {
				data, err := readInput(cmd, base)
				if err != nil {
					return err
				}

				baseDoc = data
			}

			var incoming []domain.Draft
			if drafts != "" {
				data, err := readInput(cmd, drafts)
				if err != nil {
					return err
				}

				decoded, err := domain.DecodeDrafts(data)
				if err != nil {
					return err
				}

				incoming = decoded
			}

			if cmd.Flags().Changed("text") {
				incoming = append(incoming, f.apply(cmd, domain.Draft{}))
			}

			svc, err := e.service(cmd.Context(), nil)
			if err != nil {
				return err
			}

			outcome, err := svc.MergeDocument(cmd.Context(), baseDoc, incoming, !toStdout)
			if err != nil && outcome.Document == nil {
				return err
			}

			if toStdout || err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), string(outcome.Document))
			}

			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: could not copy to the clipboard:", err)
			}

			fmt.Fprintln(cmd.ErrOrStderr(), outcome.Summary())

			for _, skip := range outcome.Result.Skipped {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped #%d: %s\n", skip.Index, skip.Reason)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&base, "base", "", "old document (\"-\" for stdin)")
	cmd.Flags().StringVar(&drafts, "drafts", "", "JSON array of new quotes")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "print the merged document instead of copying it")
	f.register(cmd, true, true)

	return cmd
}

func newViewCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "view [file]",
		Short: "Show a quotes document without changing anything",
		Long: `View renders the quotes of a JSON document in file order. Without a
file it shows the stored collection.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var records []domain.QuoteRecord

			if len(args) == 1 {
				data, err := readInput(cmd, args[0])
				if err != nil {
					return err
				}

				records, err = domain.DecodeCollection(data)
				if err != nil {
					return err
				}
			} else {
				store, err := e.openStore(cmd.Context())
				if err != nil {
					return err
				}

				records = store.Records()
			}

			if e.jsonOut {
				return writeDocument(cmd, records)
			}

			renderQuotes(cmd.OutOrStdout(), records)

			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "quotectl %s (%s)\n", Version, Commit)
		},
	}
}

// writeDocument prints records in the export layout.
func writeDocument(cmd *cobra.Command, records []domain.QuoteRecord) error {
	data, err := domain.EncodeCollection(records)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))

	return err
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
