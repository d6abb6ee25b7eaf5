package cmd

import (
	"context"
	"errors"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/tayloree/shopcli/internal/api"
	"github.com/tayloree/shopcli/internal/catalog"
	"github.com/tayloree/shopcli/internal/display"
	"golang.org/x/term"
)

var tuiCmd = &cobra.Command{
	Use:   "tui [PATH]",
	Short: "Browse a category interactively in the terminal",
	Example: `  shopcli tui Electronics/Mobiles
  shopcli tui Electronics --brand Samsung --sort price-asc`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
	registerFilterFlags(tuiCmd.Flags())
}

func runTUI(cmd *cobra.Command, args []string) error {
	opts, err := filterOptionsFromFlags(cmd)
	if err != nil {
		return err
	}
	if !flagJSON && !isInteractiveSession(cmd.InOrStdin(), cmd.OutOrStdout()) {
		return invalidArgsError(
			"`shopcli tui` requires an interactive terminal",
			"Use `shopcli browse Electronics --json` in pipelines.",
		)
	}

	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	strategy, err := sortStrategyFromFlags(s.cfg.Defaults.Sort)
	if err != nil {
		return err
	}
	limit, err := limitFromFlags(s.cfg.Defaults.Limit)
	if err != nil {
		return err
	}
	req := catalog.Request{Path: categoryPath(args), Filter: opts, Sort: strategy, Limit: limit}

	if flagJSON {
		snap, _, err := s.loadCatalog(cmd.Context())
		if err != nil {
			return err
		}
		listing, err := browseDefaultPath(snap, req)
		if err != nil {
			return err
		}
		return display.PrintListingJSON(cmd.OutOrStdout(), listing)
	}

	model := newLoadingProductsTUIModel(tuiLoadConfig{
		ctx: cmd.Context(),
		load: func(ctx context.Context) (*api.Snapshot, error) {
			snap, _, err := s.loadCatalog(ctx)
			return snap, err
		},
		request: req,
	})

	program := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
		tea.WithContext(cmd.Context()),
	)
	final, err := program.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	if m, ok := final.(productsTUIModel); ok && m.fatalErr != nil {
		return m.fatalErr
	}
	return nil
}

// browseDefaultPath browses req.Path, falling back to the first root
// category when no path was given.
func browseDefaultPath(snap *api.Snapshot, req catalog.Request) (*catalog.Listing, error) {
	if req.Path == "" {
		if len(snap.Categories) == 0 {
			return nil, notFoundError("the catalog has no categories", "Check --api or --catalog.")
		}
		req.Path = snap.Categories[0].Name
	}
	listing, err := catalog.Browse(snap.Categories, snap.Products, req)
	if err != nil {
		return nil, categoryError(req.Path, err)
	}
	return listing, nil
}

func isInteractiveSession(stdin io.Reader, stdout io.Writer) bool {
	inputFile, ok := stdin.(*os.File)
	if !ok {
		return false
	}
	if !term.IsTerminal(int(inputFile.Fd())) {
		return false
	}
	return isTTY(stdout)
}
