package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [csv-file]",
		Short: "Import a product catalog from CSV",
		Long:  "Load product variants from a CSV export into the catalog database. Rows without a product name are skipped.",
		Args:  cobra.ExactArgs(1),
		Run:   runImport,
	}
	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}
	store, err := openStore(cfg)
	if err != nil {
		exitErr("open catalog", err)
	}
	defer store.Close()

	n, err := store.ImportCSV(cmd.Context(), args[0])
	if err != nil {
		exitErr("import", err)
	}
	fmt.Printf("Imported %d product variants into %s\n", n, cfg.DBPath)
}
