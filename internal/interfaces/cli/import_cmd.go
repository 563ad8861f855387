package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/application/discovery"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/domain/request"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/infrastructure/database/postgres"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/infrastructure/database/postgres/repositories"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/intelligence/category"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/intelligence/daterange"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/common"
)

func newImportCommand() *cobra.Command {
	var (
		caseID  string
		ownerID string
		file    string
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import served discovery text into a case",
		Long:  "Parses discovery text read from --file (or stdin) and creates one\nrequest per parsed item.  With --dry-run the text is only validated\nand the parse report printed.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := getCLIContext(cmd)
			if err != nil {
				return err
			}

			text, err := readImportText(file)
			if err != nil {
				return err
			}

			if dryRun {
				report := discovery.NewImporter(nil, nil, cc.logger).ValidateImportText(text)
				if err := printJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
				if !report.Valid {
					return fmt.Errorf("import text failed validation")
				}
				return nil
			}

			if caseID == "" || ownerID == "" {
				return fmt.Errorf("--case and --owner are required unless --dry-run is set")
			}

			conn, err := postgres.NewConnection(cmd.Context(), cc.cfg.Database, cc.logger)
			if err != nil {
				return err
			}
			defer conn.Close()

			requestSvc := request.NewService(
				repositories.NewRequestRepository(conn.Pool()),
				category.NewDetector(),
				daterange.NewParser(),
				nil,
				cc.logger,
			)
			importer := discovery.NewImporter(requestSvc, nil, cc.logger)

			result, err := importer.BulkImport(cmd.Context(), common.CaseID(caseID), common.UserID(ownerID), text)
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if result.Imported == 0 {
				return fmt.Errorf("no requests imported")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&caseID, "case", "", "case identifier to import into")
	cmd.Flags().StringVar(&ownerID, "owner", "", "owner identifier the requests belong to")
	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the discovery text file (stdin when empty or \"-\")")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate and report without writing anything")

	return cmd
}

func readImportText(path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
