package persistence

import (
	"context"

	appdoc "github.com/workshop/backend/internal/application/document"
	"github.com/workshop/backend/internal/domain/document"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appdoc.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// QuotationRepo returns the quotation repository scoped to the current transaction.
func (r *gormTransactionalRepositories) QuotationRepo() document.QuotationRepository {
	return NewGormQuotationRepository(r.tx)
}

// WorkOrderRepo returns the work order repository scoped to the current transaction.
func (r *gormTransactionalRepositories) WorkOrderRepo() document.WorkOrderRepository {
	return NewGormWorkOrderRepository(r.tx)
}

// InvoiceRepo returns the invoice repository scoped to the current transaction.
func (r *gormTransactionalRepositories) InvoiceRepo() document.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appdoc.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appdoc.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
