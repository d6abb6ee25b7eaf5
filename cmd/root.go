package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tayloree/shopcli/internal/catalog"
	"github.com/tayloree/shopcli/internal/filter"
)

var (
	flagAPI     string
	flagCatalog string
	flagConfig  string
	flagJSON    bool
	flagVerbose bool

	flagMinPrice    float64
	flagMaxPrice    float64
	flagPriceBand   string
	flagBrands      []string
	flagRAM         []string
	flagTags        []string
	flagMinDiscount int
	flagSort        string
	flagLimit       int
)

var rootCmd = &cobra.Command{
	Use:   "shopcli",
	Short: "Browse a storefront catalog by category with faceted filters",
	Long: "CLI tool that resolves category paths against a storefront catalog, lists the\n" +
		"matching products and narrows them by price, tags, brand, RAM and discount.\n" +
		"The catalog comes from the storefront REST API (--api) or a JSON snapshot (--catalog).\n\n" +
		"Agent-friendly mode: minor syntax issues are auto-corrected when intent is clear " +
		"(for example: -brand Apple, brand=Apple, --bradn Apple).",
	Example: `  shopcli categories
  shopcli browse Electronics/Mobiles --brand Samsung --sort price-asc
  shopcli browse Electronics/Mobiles --price-band 15k-30k --min-discount 20
  shopcli facets Electronics --brand-search sam
  shopcli compare Electronics/Mobiles Electronics/Laptops --max-price 50000
  shopcli serve --addr :8080`,
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagAPI, "api", "", "Storefront API base URL (default from config)")
	pf.StringVar(&flagCatalog, "catalog", "", "Read the catalog from a JSON snapshot file instead of the API")
	pf.StringVar(&flagConfig, "config", "", "Config file (default ./shopcli.yaml when present)")
	pf.BoolVar(&flagJSON, "json", false, "Output as JSON")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Log debug details to stderr")
}

// Execute runs the root command.
func Execute() {
	os.Exit(runCLI(os.Args[1:], os.Stdout, os.Stderr))
}

func runCLI(args []string, stdout, stderr io.Writer) int {
	resetCLIState()

	normalizedArgs, notes := normalizeCLIArgs(args)
	for _, note := range notes {
		fmt.Fprintf(stderr, "note: %s\n", note)
	}

	if len(normalizedArgs) == 0 {
		if err := printQuickStart(stdout, !isTTY(stdout)); err != nil {
			cliErr := classifyCLIError(err)
			fmt.Fprintln(stderr, formatCLIErrorText(cliErr))
			return cliErr.ExitCode
		}
		return ExitSuccess
	}

	if shouldAutoJSON(normalizedArgs, isTTY(stdout)) {
		normalizedArgs = append(normalizedArgs, "--json")
	}

	setCommandIO(rootCmd, stdout, stderr)
	rootCmd.SetArgs(normalizedArgs)

	if err := rootCmd.Execute(); err != nil {
		cliErr := classifyCLIError(err)
		if hasJSONPreference(normalizedArgs) {
			if jerr := printCLIErrorJSON(stderr, cliErr); jerr != nil {
				fmt.Fprintln(stderr, formatCLIErrorText(classifyCLIError(jerr)))
				return ExitInternal
			}
		} else {
			fmt.Fprintln(stderr, formatCLIErrorText(cliErr))
		}
		return cliErr.ExitCode
	}
	return ExitSuccess
}

func setCommandIO(cmd *cobra.Command, stdout, stderr io.Writer) {
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	for _, child := range cmd.Commands() {
		setCommandIO(child, stdout, stderr)
	}
}

func resetCLIState() {
	flagAPI = ""
	flagCatalog = ""
	flagConfig = ""
	flagJSON = false
	flagVerbose = false
	flagMinPrice = 0
	flagMaxPrice = 0
	flagPriceBand = ""
	flagBrands = nil
	flagRAM = nil
	flagTags = nil
	flagMinDiscount = 0
	flagSort = ""
	flagLimit = 0
	flagBrandSearch = ""
	flagAddr = ""

	// pflag remembers Changed across Execute calls.
	resetChanged(rootCmd)
}

func resetChanged(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Changed = false
		if f.Name == "help" {
			_ = f.Value.Set("false")
		}
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetChanged(child)
	}
}

func registerFilterFlags(f *pflag.FlagSet) {
	f.Float64Var(&flagMinPrice, "min-price", 0, "Lowest price to include (inclusive)")
	f.Float64Var(&flagMaxPrice, "max-price", 0, "Highest price to include (inclusive)")
	f.StringVar(&flagPriceBand, "price-band", "", "Price band preset: "+strings.Join(filter.PriceBandIDs(), ", "))
	f.StringSliceVarP(&flagBrands, "brand", "b", nil, "Keep these brands (repeatable, exact match)")
	f.StringSliceVar(&flagRAM, "ram", nil, "Keep these RAM sizes (repeatable, e.g. 8GB)")
	f.StringSliceVarP(&flagTags, "tag", "t", nil, "Keep products carrying any of these tags (repeatable)")
	f.IntVar(&flagMinDiscount, "min-discount", 0, "Minimum discount percentage (e.g. 20)")
	f.StringVarP(&flagSort, "sort", "s", "", "Sort by popularity, price-asc, price-desc, or rating")
	f.IntVarP(&flagLimit, "limit", "n", 0, "Limit number of results (0 = all)")
}

// filterOptionsFromFlags builds the filter state from the shared flags.
func filterOptionsFromFlags(cmd *cobra.Command) (filter.Options, error) {
	flags := cmd.Flags()
	opts := filter.Options{
		Tags:   filter.NewSet(flagTags...),
		Brands: filter.NewSet(flagBrands...),
		RAM:    filter.NewSet(flagRAM...),
	}
	if flags.Changed("min-price") {
		opts.Price.Min = filter.Float(flagMinPrice)
	}
	if flags.Changed("max-price") {
		opts.Price.Max = filter.Float(flagMaxPrice)
	}
	if flags.Changed("min-discount") {
		opts.MinDiscount = filter.Int(flagMinDiscount)
	}

	if flagPriceBand != "" {
		if !opts.Price.IsEmpty() {
			return filter.Options{}, invalidArgsError(
				"--price-band cannot be combined with --min-price/--max-price",
				"shopcli browse Electronics --price-band 5k-15k",
			)
		}
		band, err := filter.ParsePriceBand(flagPriceBand)
		if err != nil {
			return filter.Options{}, invalidArgsError(
				err.Error(),
				"use one of: "+strings.Join(filter.PriceBandIDs(), ", "),
			)
		}
		opts.Price = band.Range()
	}

	if err := opts.Validate(); err != nil {
		return filter.Options{}, invalidArgsError(err.Error(), "shopcli browse Electronics --min-price 1000 --max-price 20000")
	}
	return opts, nil
}

func sortStrategyFromFlags(fallback string) (filter.SortStrategy, error) {
	raw := flagSort
	if raw == "" {
		raw = fallback
	}
	strategy, err := filter.ParseSortStrategy(raw)
	if err != nil {
		return "", invalidArgsError(
			"invalid value for --sort (use popularity, price-asc, price-desc, or rating)",
			"shopcli browse Electronics --sort price-asc",
			"shopcli browse Electronics --sort rating",
		)
	}
	return strategy, nil
}

func limitFromFlags(fallback int) (int, error) {
	if flagLimit < 0 {
		return 0, invalidArgsError("--limit must not be negative", "shopcli browse Electronics --limit 10")
	}
	if flagLimit == 0 {
		return fallback, nil
	}
	return flagLimit, nil
}

// categoryPath joins positional arguments into one category path, so
// `browse Electronics Mobiles` and `browse Electronics/Mobiles` agree.
func categoryPath(args []string) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		if arg = strings.Trim(strings.TrimSpace(arg), "/"); arg != "" {
			parts = append(parts, arg)
		}
	}
	return strings.Join(parts, "/")
}

func categoryError(path string, err error) error {
	if errors.Is(err, catalog.ErrCategoryNotFound) {
		return notFoundError(
			fmt.Sprintf("no category matches %q", path),
			"Run `shopcli categories` to list valid paths.",
		)
	}
	return err
}
