package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/mbio16/ln-community-graph/internal/database"
	"github.com/mbio16/ln-community-graph/internal/report"
)

// NewDiffCmd creates the diff command.
func NewDiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <previous.db> <current.db> [community-id...]",
		Short: "Compare two community graph exports",
		Long: `Diff compares two SQLite exports written by 'lncgraph fetch --export-db' and shows:
- Members that joined or left the community
- Channels between members that were opened or closed
- Channels whose capacity changed

Without community ids, every community present in both exports is compared.

Examples:
  # Compare two exports
  lncgraph diff monday.db friday.db

  # Compare one community and output JSON
  lncgraph diff --json monday.db friday.db 1b2c3d4e-0000-0000-0000-000000000000

  # List the communities in an export
  lncgraph diff --list friday.db`,
		Args: cobra.MinimumNArgs(1),
		RunE: runDiffCmd,
	}

	cmd.Flags().BoolP("list", "l", false,
		"List the communities in each given export")
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	return cmd
}

// runDiffCmd executes the diff command.
func runDiffCmd(cmd *cobra.Command, args []string) error {
	list, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return errors.New("--json and --markdown cannot be used together")
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if list {
		for _, path := range args {
			if err := listExport(ctx, out, path); err != nil {
				return err
			}
		}
		return nil
	}

	if len(args) < 2 {
		return fmt.Errorf("two exports are required (got %d)", len(args))
	}

	diffs, err := diffExports(ctx, args[0], args[1], args[2:])
	if err != nil {
		return err
	}

	switch {
	case jsonOutput:
		return report.WriteDiffJSON(out, diffs)
	case markdownOutput:
		for _, d := range diffs {
			if err := report.WriteDiffMarkdown(out, d); err != nil {
				return err
			}
		}
	default:
		for i, d := range diffs {
			if i > 0 {
				fmt.Fprintln(out)
			}
			if err := report.WriteDiffText(out, d); err != nil {
				return err
			}
		}
	}
	return nil
}

// listExport prints the communities stored in an export.
func listExport(ctx context.Context, out io.Writer, path string) error {
	db, err := database.Open(path, database.Options{})
	if err != nil {
		return err
	}
	defer db.Close()

	ids, err := db.ListCommunities(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s (%d communities):\n", path, len(ids))
	for _, id := range ids {
		snap, err := db.LoadSnapshot(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  %-40s  %-24s  %s  members=%d channels=%d\n",
			id,
			snap.Graph.Community.Name,
			snap.DateFetched.Format("2006-01-02 15:04:05"),
			len(snap.Graph.Community.Members),
			len(snap.Graph.Channels),
		)
	}
	return nil
}

// diffExports compares the given communities, or all shared ones, between
// two exports.
func diffExports(ctx context.Context, previousPath, currentPath string, ids []string) ([]*database.GraphDiff, error) {
	previous, err := database.Open(previousPath, database.Options{})
	if err != nil {
		return nil, err
	}
	defer previous.Close()

	current, err := database.Open(currentPath, database.Options{})
	if err != nil {
		return nil, err
	}
	defer current.Close()

	if len(ids) == 0 {
		prevIDs, err := previous.ListCommunities(ctx)
		if err != nil {
			return nil, err
		}
		currIDs, err := current.ListCommunities(ctx)
		if err != nil {
			return nil, err
		}
		for _, id := range currIDs {
			if slices.Contains(prevIDs, id) {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			return nil, fmt.Errorf("%s and %s share no communities", previousPath, currentPath)
		}
	}

	diffs := make([]*database.GraphDiff, 0, len(ids))
	for _, id := range ids {
		prev, err := previous.LoadSnapshot(ctx, id)
		if err != nil {
			return nil, err
		}
		if prev == nil {
			return nil, fmt.Errorf("community %s not found in %s", id, previousPath)
		}
		curr, err := current.LoadSnapshot(ctx, id)
		if err != nil {
			return nil, err
		}
		if curr == nil {
			return nil, fmt.Errorf("community %s not found in %s", id, currentPath)
		}
		diffs = append(diffs, database.Diff(prev.Graph, curr.Graph))
	}
	return diffs, nil
}
