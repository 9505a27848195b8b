//services/access-service/internal/ports/repository/tx_manager.repo.go

package repository

import "context"

// TransactionManager interface abstracts the database transaction.
// Required for atomicity across two tables (access_requests + accounts).
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
