package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/foldergraph/pkg/membership"
)

// indexOptions holds the flags of the index command.
type indexOptions struct {
	empty bool
}

// indexCommand creates the index command that prints folder membership.
func (c *CLI) indexCommand() *cobra.Command {
	var opts indexOptions

	cmd := &cobra.Command{
		Use:   "index [vault]",
		Short: "Show which folder every note belongs to",
		Long: `Scan a vault and print the membership index: every file with its folder,
plus the folders that have no visible content.

Files directly at the vault root belong to no folder and are not listed.
Hidden entries such as .obsidian and .git are skipped.`,
		Example: `  foldergraph index ~/notes
  foldergraph index --empty`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runIndex(cmd, c.vaultArg(args), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.empty, "empty", false, "only list empty folders")
	return cmd
}

func (c *CLI) runIndex(cmd *cobra.Command, vault string, opts indexOptions) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	out := cmd.OutOrStdout()

	prog := newProgress(logger)
	spin := newSpinner(ctx, cmd.ErrOrStderr(), "Scanning "+vault+"...")
	spin.Start()

	idx := membership.New()
	err := membership.Scan(ctx, vault, idx)
	spin.Stop()
	if err != nil {
		return err
	}
	prog.done("Scanned %s", vault)

	printIndex(out, idx, opts.empty)
	return nil
}

// printIndex writes the membership tables for idx.
func printIndex(w io.Writer, idx *membership.Index, emptyOnly bool) {
	entries := idx.Entries()
	empty := idx.EmptyGroups()

	if !emptyOnly {
		if len(entries) == 0 {
			printWarning(w, "No files inside folders")
		} else {
			rows := make([][]string, len(entries))
			for i, e := range entries {
				rows[i] = []string{e.Group, e.Path}
			}
			io.WriteString(w, renderTable([]string{"Folder", "File"}, rows)+"\n")
		}
	}

	if len(empty) > 0 {
		rows := make([][]string, len(empty))
		for i, g := range empty {
			rows[i] = []string{g}
		}
		io.WriteString(w, renderTable([]string{"Empty folder"}, rows)+"\n")
	}

	printStats(w,
		statCount{len(idx.Groups()), "folders"},
		statCount{len(entries), "files"},
		statCount{len(empty), "empty"},
	)
	if len(entries) == 0 && len(empty) == 0 {
		printInfo(w, "Index is empty")
	}
}
