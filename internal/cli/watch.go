package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/foldergraph/pkg/membership"
)

// watchCommand creates the watch command that follows folder membership live.
func (c *CLI) watchCommand() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "watch [vault]",
		Short: "Follow folder membership as files are created",
		Long: `Scan a vault, then keep recording every file and folder created below it
until interrupted.

Deleted and renamed files stay in the index with their old folder, the same
way a running graph view keeps them until it is reopened.`,
		Example: `  foldergraph watch ~/notes
  foldergraph watch -v`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), cmd.OutOrStdout(), c.vaultArg(args), quiet)
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print recorded entries")
	return cmd
}

func (c *CLI) runWatch(ctx context.Context, out io.Writer, vault string, quiet bool) error {
	logger := loggerFromContext(ctx)

	idx := membership.New()
	prog := newProgress(logger)
	if err := membership.Scan(ctx, vault, idx); err != nil {
		return err
	}
	prog.done("Indexed %d files", idx.Len())

	opts := []membership.WatchOption{membership.WithWatchLogger(logger)}
	if !quiet {
		opts = append(opts, membership.WithOnRecord(func(leaf membership.Leaf) {
			printLeaf(out, leaf)
		}))
	}
	w, err := membership.NewWatcher(vault, idx, opts...)
	if err != nil {
		return err
	}
	defer w.Close()

	logger.Info("Watching", "vault", vault, "dirs", len(w.Watched()))
	err = w.Run(ctx)
	if ctx.Err() != nil {
		// Interrupted by the user.
		logger.Info("Stopped", "files", idx.Len(), "empty", len(idx.EmptyGroups()))
		return nil
	}
	return err
}

// printLeaf writes one recorded entry the way the index table shows it.
func printLeaf(w io.Writer, leaf membership.Leaf) {
	switch {
	case leaf.Folder && leaf.Children == 0:
		printInfo(w, "%s %s", StyleGroup.Render(leaf.Path+"/"), StyleDim.Render("(empty)"))
	case leaf.Folder:
		printInfo(w, "%s", StyleGroup.Render(leaf.Path+"/"))
	case leaf.Parent == "" || leaf.Parent == membership.RootPath:
		printInfo(w, "%s %s", leaf.Path, StyleDim.Render("(no folder)"))
	default:
		printSuccess(w, "%s %s %s", leaf.Path, StyleDim.Render(iconArrow), StyleGroup.Render(leaf.Parent))
	}
}
