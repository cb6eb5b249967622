package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tcollab-dev/tcollab/internal/model"
)

// ValidationError describes a single admission invariant violation.
type ValidationError struct {
	Invariant   int
	ID          string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invariant %d [%s]: %s", e.Invariant, e.ID, e.Description)
}

// AccountChecker tests whether an account id exists in the session.
type AccountChecker interface {
	Exists(id string) bool
}

// ValidateTransaction enforces the admission invariants on a candidate
// transaction. A non-empty result means the transaction must be rejected
// with no state change.
//
// allowUnbalanced skips the equal-sums and nonzero-sum checks (invariant 6)
// but the structural invariants always apply.
func ValidateTransaction(txn *model.Transaction, accounts AccountChecker, allowUnbalanced bool) []ValidationError {
	var errs []ValidationError

	// Invariant 1: at least two entry lines.
	if len(txn.Entries) < 2 {
		errs = append(errs, ValidationError{
			Invariant:   1,
			ID:          txn.ID,
			Description: fmt.Sprintf("transaction needs at least 2 entries, got %d", len(txn.Entries)),
		})
	}

	debitSeen := make(map[string]bool)
	creditSeen := make(map[string]bool)
	for _, line := range txn.Entries {
		// Invariant 2: valid account references.
		if !accounts.Exists(line.AccountID) {
			errs = append(errs, ValidationError{
				Invariant:   2,
				ID:          txn.ID,
				Description: fmt.Sprintf("unknown account %q", line.AccountID),
			})
		}

		// Invariant 3: strictly positive amounts.
		if line.Amount.Cmp(decimal.Zero) <= 0 {
			errs = append(errs, ValidationError{
				Invariant:   3,
				ID:          txn.ID,
				Description: fmt.Sprintf("amount %s is not positive", line.Amount),
			})
		}

		// Invariant 4: entry type is debit or credit.
		if !line.Type.Valid() {
			errs = append(errs, ValidationError{
				Invariant:   4,
				ID:          txn.ID,
				Description: fmt.Sprintf("unknown entry type %q", line.Type),
			})
			continue
		}

		// Invariant 5: an account may appear at most once per side. Debiting
		// and crediting the same account in one transaction is legal.
		switch line.Type {
		case model.Debit:
			if debitSeen[line.AccountID] {
				errs = append(errs, ValidationError{
					Invariant:   5,
					ID:          txn.ID,
					Description: fmt.Sprintf("account %q debited more than once", line.AccountID),
				})
			}
			debitSeen[line.AccountID] = true
		case model.Credit:
			if creditSeen[line.AccountID] {
				errs = append(errs, ValidationError{
					Invariant:   5,
					ID:          txn.ID,
					Description: fmt.Sprintf("account %q credited more than once", line.AccountID),
				})
			}
			creditSeen[line.AccountID] = true
		}
	}

	if !allowUnbalanced {
		// Invariant 6: debits equal credits and the sum is nonzero.
		debits, credits := txn.Totals()
		if !debits.Equal(credits) {
			errs = append(errs, ValidationError{
				Invariant:   6,
				ID:          txn.ID,
				Description: fmt.Sprintf("debits (%s) != credits (%s)", debits.StringFixed(2), credits.StringFixed(2)),
			})
		} else if debits.IsZero() {
			errs = append(errs, ValidationError{
				Invariant:   6,
				ID:          txn.ID,
				Description: "transaction amount cannot be zero",
			})
		}
	}

	return errs
}
