// services/access-service/internal/infra/memory/db.memory.go
package memory

import (
	"context"
	"sync"

	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/access"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/account"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/audit"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/session"
	"github.com/google/uuid"
)

// DB is the process-local backing store used for development and tests.
// Every store built on the same DB shares one lock, so each call is atomic.
type DB struct {
	mu sync.RWMutex

	requests        map[uuid.UUID]access.AccessRequest
	requestsByEmail map[string]uuid.UUID
	requestOrder    []uuid.UUID

	accounts        map[uuid.UUID]account.Account
	accountsByEmail map[string]uuid.UUID

	sessions map[string]session.Session // keyed by token hash

	audit []audit.AuditEvent

	txMu sync.Mutex
}

func NewDB() *DB {
	return &DB{
		requests:        make(map[uuid.UUID]access.AccessRequest),
		requestsByEmail: make(map[string]uuid.UUID),
		accounts:        make(map[uuid.UUID]account.Account),
		accountsByEmail: make(map[string]uuid.UUID),
		sessions:        make(map[string]session.Session),
	}
}

type txKey struct{}

// memTx collects undo steps registered by writes made inside RunInTx.
type memTx struct {
	undo []func()
}

// TxManager serializes transactions and rolls back their writes on error.
type TxManager struct {
	db *DB
}

func NewTxManager(db *DB) *TxManager {
	return &TxManager{db: db}
}

func (tm *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, nested := ctx.Value(txKey{}).(*memTx); nested {
		return fn(ctx)
	}

	tm.db.txMu.Lock()
	defer tm.db.txMu.Unlock()

	tx := &memTx{}
	defer func() {
		if p := recover(); p != nil {
			tm.rollback(tx)
			panic(p)
		} else if err != nil {
			tm.rollback(tx)
		}
	}()
	return fn(context.WithValue(ctx, txKey{}, tx))
}

func (tm *TxManager) rollback(tx *memTx) {
	tm.db.mu.Lock()
	defer tm.db.mu.Unlock()
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
}

// onRollback registers an undo step; callers hold db.mu when the step runs.
func onRollback(ctx context.Context, undo func()) {
	if tx, ok := ctx.Value(txKey{}).(*memTx); ok {
		tx.undo = append(tx.undo, undo)
	}
}

func checkCtx(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
