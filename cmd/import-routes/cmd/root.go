package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"arqueo-backend/internal/config"
	"arqueo-backend/internal/models"
	"arqueo-backend/internal/repository"
	"arqueo-backend/internal/services/routes"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	routeFile string
	sellerID  int64
	dryRun    bool
)

var rootCmd = &cobra.Command{
	Use:   "import-routes",
	Short: "Load a seller's weekly route sheet into the database",
	Long: `Reads a CSV or XLSX route sheet and upserts one route row per
(seller, weekday, client).

Column A holds the Spanish weekday name and column E the client title in
the form "1234 Client Name". Titles without a code get AUTO_<n>.

Example:
  import-routes --file rutas.xlsx --seller 123456789
  import-routes --file rutas.csv --dry-run`,
	SilenceUsage: true,
	RunE:         runImport,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().StringVarP(&routeFile, "file", "f", "", "CSV or XLSX route sheet (required)")
	rootCmd.Flags().Int64Var(&sellerID, "seller", 0, "seller Telegram ID (defaults to DEFAULT_SELLER_ID)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and report without writing")

	rootCmd.MarkFlagRequired("file")
}

func runImport(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	lg := config.NewLogger(cfg)

	if sellerID == 0 {
		sellerID = cfg.DefaultSellerID
	}
	if sellerID == 0 {
		return fmt.Errorf("missing seller: pass --seller or set DEFAULT_SELLER_ID")
	}

	f, err := os.Open(routeFile)
	if err != nil {
		return err
	}
	defer f.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var store routes.Store = discardStore{}
	if !dryRun {
		db, err := config.OpenDB(cfg)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		if err := db.AutoMigrate(&models.Seller{}, &models.Route{}); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		repo := repository.NewClientRepository(db)
		if _, err := repo.GetOrCreateSeller(ctx, sellerID, "Vendedor"); err != nil {
			return fmt.Errorf("register seller: %w", err)
		}
		store = repository.NewRouteRepository(db)
	}

	summary, err := routes.NewImporter(store, lg).ImportFile(ctx, sellerID, filepath.Base(routeFile), f, dryRun)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "parsed:   %d\n", summary.Parsed)
	fmt.Fprintf(out, "skipped:  %d\n", len(summary.Skipped))
	if summary.DryRun {
		fmt.Fprintln(out, "dry run, nothing written")
	} else {
		fmt.Fprintf(out, "upserted: %d\n", summary.Upserted)
	}
	return nil
}

type discardStore struct{}

func (discardStore) UpsertRoutes(context.Context, []models.Route) (int64, error) { return 0, nil }

func (discardStore) ListByDay(context.Context, int64, string) ([]models.Route, error) {
	return nil, nil
}
