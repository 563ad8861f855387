package discovery

import (
	"context"
	"errors"
	"fmt"

	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/domain/request"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/errors"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/common"
	dtypes "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/discovery"
)

// ImportPublisher emits the batch-import event.  Best-effort.
type ImportPublisher interface {
	RequestsImported(ctx context.Context, caseID common.CaseID, imported, failed int) error
}

// ImportError describes one item that could not be imported.
type ImportError struct {
	Type    dtypes.RequestType `json:"type"`
	Number  int                `json:"number"`
	Message string             `json:"message"`
}

// ImportResult summarises a bulk import.
type ImportResult struct {
	Imported int                         `json:"imported"`
	Failed   int                         `json:"failed"`
	Requests []*request.DiscoveryRequest `json:"requests"`
	Errors   []ImportError               `json:"errors,omitempty"`
}

// ValidationResult is the outcome of a dry-run over import text.
type ValidationResult struct {
	Valid    bool                   `json:"valid"`
	Count    int                    `json:"count"`
	Requests []dtypes.ParsedRequest `json:"requests"`
	Errors   []string               `json:"errors,omitempty"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Importer
// ─────────────────────────────────────────────────────────────────────────────

// Importer turns served discovery text into persisted requests.  Imports are
// best-effort per item: one bad item (most often a number collision with an
// earlier import) never rolls back its siblings.
type Importer struct {
	requests  *request.Service
	publisher ImportPublisher
	logger    logging.Logger
}

// NewImporter creates an Importer.  publisher may be nil.
func NewImporter(requests *request.Service, publisher ImportPublisher, logger logging.Logger) *Importer {
	return &Importer{
		requests:  requests,
		publisher: publisher,
		logger:    logger,
	}
}

// BulkImport parses the text and persists every item it can.  Text that
// yields no requests at all fails outright; the caller pasted something the
// parser does not understand and silence would read as success.
func (i *Importer) BulkImport(
	ctx context.Context,
	caseID common.CaseID,
	ownerID common.UserID,
	text string,
) (*ImportResult, error) {
	parsed := ParseDiscoveryText(text)
	if len(parsed) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeParseNoRequests,
			"no discovery requests found in the provided text")
	}

	result := &ImportResult{}
	for _, item := range parsed {
		req, err := i.requests.Create(ctx, caseID, ownerID, item.Type, item.Number, item.Text, "")
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, ImportError{
				Type:    item.Type,
				Number:  item.Number,
				Message: pkgerrors.GetCode(err).String() + ": " + errMessage(err),
			})
			continue
		}
		result.Imported++
		result.Requests = append(result.Requests, req)
	}

	if i.publisher != nil {
		if err := i.publisher.RequestsImported(ctx, caseID, result.Imported, result.Failed); err != nil {
			i.logger.Warn("failed to publish import event", logging.Err(err))
		}
	}
	i.logger.Info("bulk import finished",
		logging.String("case_id", string(caseID)),
		logging.Int("imported", result.Imported),
		logging.Int("failed", result.Failed))
	return result, nil
}

// ValidateImportText dry-runs the parser and reports what an import would
// do, without touching storage.  Within-batch duplicate numbers are flagged
// here because the importer would otherwise reject the second occurrence
// only at insert time.
func (i *Importer) ValidateImportText(text string) *ValidationResult {
	parsed := ParseDiscoveryText(text)
	result := &ValidationResult{
		Count:    len(parsed),
		Requests: parsed,
	}
	if len(parsed) == 0 {
		result.Errors = append(result.Errors, "no discovery requests found in the provided text")
		return result
	}

	seen := make(map[string]bool, len(parsed))
	for _, item := range parsed {
		key := fmt.Sprintf("%s/%d", item.Type, item.Number)
		if seen[key] {
			result.Errors = append(result.Errors,
				fmt.Sprintf("duplicate item in batch: %s %d", item.Type, item.Number))
			continue
		}
		seen[key] = true
	}
	result.Valid = len(result.Errors) == 0
	return result
}

func errMessage(err error) string {
	var appErr *pkgerrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
