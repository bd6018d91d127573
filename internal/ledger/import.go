package ledger

import (
	"context"
	"fmt"

	"github.com/Veraticus/kopeck/internal/common"
	"github.com/Veraticus/kopeck/internal/model"
	"github.com/Veraticus/kopeck/internal/service"
)

// ImportResult reports the outcome of ImportTransactions.
type ImportResult struct {
	Imported   int
	Duplicates int
}

// ImportTransactions stores a batch of transactions in one scoped
// transaction. Rows whose ExternalID is already stored, or repeats earlier
// in the batch, are skipped and counted as duplicates. Any invalid row
// aborts the whole batch. progress, when non-nil, is called after each row
// with the number of rows processed so far.
func (s *Service) ImportTransactions(ctx context.Context, txns []model.Transaction, progress func(done int)) (ImportResult, error) {
	var result ImportResult

	for i := range txns {
		if err := checkShape(&txns[i]); err != nil {
			return ImportResult{}, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	err := s.mutate(ctx, func(tx service.Transaction) (bool, error) {
		seen := make(map[string]bool, len(txns))
		for i := range txns {
			txn := &txns[i]

			if txn.ExternalID != "" {
				exists := seen[txn.ExternalID]
				if !exists {
					var err error
					exists, err = tx.ExternalIDExists(ctx, txn.ExternalID)
					if err != nil {
						return false, err
					}
				}
				if exists {
					result.Duplicates++
					reportProgress(progress, i+1)
					continue
				}
				seen[txn.ExternalID] = true
			}

			if err := s.insert(ctx, tx, txn); err != nil {
				return false, fmt.Errorf("row %d: %w", i+1, err)
			}
			result.Imported++
			reportProgress(progress, i+1)
		}
		return result.Imported > 0, nil
	})
	if err != nil {
		return ImportResult{}, err
	}

	common.LogInfo("Imported transactions", common.Fields{"imported": result.Imported, "duplicates": result.Duplicates})
	return result, nil
}

func reportProgress(progress func(int), done int) {
	if progress != nil {
		progress(done)
	}
}
