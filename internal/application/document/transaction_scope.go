package document

import (
	"context"

	"github.com/workshop/backend/internal/domain/document"
)

// TransactionScope provides transactional access to document repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically. Conversions depend on this: the source mark and the new
// document must land together or not at all.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all document repositories
// within a transaction. All repositories returned share the same underlying
// database transaction.
type TransactionalRepositories interface {
	// QuotationRepo returns the quotation repository scoped to the current transaction
	QuotationRepo() document.QuotationRepository
	// WorkOrderRepo returns the work order repository scoped to the current transaction
	WorkOrderRepo() document.WorkOrderRepository
	// InvoiceRepo returns the invoice repository scoped to the current transaction
	InvoiceRepo() document.InvoiceRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing with plain repositories.
type NoOpTransactionScope struct {
	quotationRepo document.QuotationRepository
	workOrderRepo document.WorkOrderRepository
	invoiceRepo   document.InvoiceRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	quotationRepo document.QuotationRepository,
	workOrderRepo document.WorkOrderRepository,
	invoiceRepo document.InvoiceRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		quotationRepo: quotationRepo,
		workOrderRepo: workOrderRepo,
		invoiceRepo:   invoiceRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// QuotationRepo returns the quotation repository
func (s *NoOpTransactionScope) QuotationRepo() document.QuotationRepository {
	return s.quotationRepo
}

// WorkOrderRepo returns the work order repository
func (s *NoOpTransactionScope) WorkOrderRepo() document.WorkOrderRepository {
	return s.workOrderRepo
}

// InvoiceRepo returns the invoice repository
func (s *NoOpTransactionScope) InvoiceRepo() document.InvoiceRepository {
	return s.invoiceRepo
}
