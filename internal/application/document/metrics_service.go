package document

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/workshop/backend/internal/domain/document"
	"github.com/workshop/backend/internal/domain/shared/valueobject"
)

// MetricsService aggregates per-org document counts and amounts for the
// dashboard endpoints.
type MetricsService struct {
	quotationRepo document.QuotationRepository
	workOrderRepo document.WorkOrderRepository
	invoiceRepo   document.InvoiceRepository
}

// NewMetricsService creates a new MetricsService
func NewMetricsService(
	quotationRepo document.QuotationRepository,
	workOrderRepo document.WorkOrderRepository,
	invoiceRepo document.InvoiceRepository,
) *MetricsService {
	return &MetricsService{
		quotationRepo: quotationRepo,
		workOrderRepo: workOrderRepo,
		invoiceRepo:   invoiceRepo,
	}
}

var quotationMetricStatuses = []document.QuotationStatus{
	document.QuotationStatusDraft,
	document.QuotationStatusSent,
	document.QuotationStatusApproved,
	document.QuotationStatusRejected,
	document.QuotationStatusConverted,
	document.QuotationStatusCancelled,
}

var workOrderMetricStatuses = []document.WorkOrderStatus{
	document.WorkOrderStatusPending,
	document.WorkOrderStatusInProgress,
	document.WorkOrderStatusDiagnosed,
	document.WorkOrderStatusApproved,
	document.WorkOrderStatusInRepair,
	document.WorkOrderStatusWaitingParts,
	document.WorkOrderStatusCompleted,
	document.WorkOrderStatusDelivered,
}

var invoiceMetricStatuses = []document.InvoiceStatus{
	document.InvoiceStatusDraft,
	document.InvoiceStatusSent,
	document.InvoiceStatusOverdue,
	document.InvoiceStatusPaid,
	document.InvoiceStatusCancelled,
}

// QuotationMetrics returns quotation counts by status and the conversion rate
// (converted over all non-draft, non-cancelled quotations).
func (s *MetricsService) QuotationMetrics(ctx context.Context, orgID uuid.UUID) (*QuotationMetricsResponse, error) {
	byStatus := make(map[string]int64, len(quotationMetricStatuses))
	var total int64
	for _, status := range quotationMetricStatuses {
		count, err := s.quotationRepo.CountByStatus(ctx, orgID, status)
		if err != nil {
			return nil, err
		}
		byStatus[status.String()] = count
		total += count
	}

	decided := byStatus[document.QuotationStatusSent.String()] +
		byStatus[document.QuotationStatusApproved.String()] +
		byStatus[document.QuotationStatusRejected.String()] +
		byStatus[document.QuotationStatusConverted.String()]
	approved := byStatus[document.QuotationStatusApproved.String()] +
		byStatus[document.QuotationStatusConverted.String()]
	approvalRate := decimal.Zero
	conversionRate := decimal.Zero
	if decided > 0 {
		approvalRate = decimal.NewFromInt(approved).
			Div(decimal.NewFromInt(decided)).Round(4)
		conversionRate = decimal.NewFromInt(byStatus[document.QuotationStatusConverted.String()]).
			Div(decimal.NewFromInt(decided)).Round(4)
	}

	return &QuotationMetricsResponse{
		Total:          total,
		ByStatus:       byStatus,
		ApprovalRate:   approvalRate,
		ConversionRate: conversionRate,
	}, nil
}

// WorkOrderMetrics returns work order counts by pipeline stage
func (s *MetricsService) WorkOrderMetrics(ctx context.Context, orgID uuid.UUID) (*WorkOrderMetricsResponse, error) {
	byStatus := make(map[string]int64, len(workOrderMetricStatuses))
	var total int64
	for _, status := range workOrderMetricStatuses {
		count, err := s.workOrderRepo.CountByStatus(ctx, orgID, status)
		if err != nil {
			return nil, err
		}
		byStatus[status.String()] = count
		total += count
	}
	return &WorkOrderMetricsResponse{Total: total, ByStatus: byStatus}, nil
}

// InvoiceMetrics returns invoice counts and amounts by status plus the
// collection rate (paid over paid plus outstanding).
func (s *MetricsService) InvoiceMetrics(ctx context.Context, orgID uuid.UUID) (*InvoiceMetricsResponse, error) {
	byStatus := make(map[string]int64, len(invoiceMetricStatuses))
	var total int64
	for _, status := range invoiceMetricStatuses {
		count, err := s.invoiceRepo.CountByStatus(ctx, orgID, status)
		if err != nil {
			return nil, err
		}
		byStatus[status.String()] = count
		total += count
	}

	paid, err := s.invoiceRepo.SumTotalByStatus(ctx, orgID, document.InvoiceStatusPaid)
	if err != nil {
		return nil, err
	}
	sent, err := s.invoiceRepo.SumTotalByStatus(ctx, orgID, document.InvoiceStatusSent)
	if err != nil {
		return nil, err
	}
	overdue, err := s.invoiceRepo.SumTotalByStatus(ctx, orgID, document.InvoiceStatusOverdue)
	if err != nil {
		return nil, err
	}

	outstanding := sent.Add(overdue)
	rate := decimal.Zero
	if billed := paid.Add(outstanding); billed.IsPositive() {
		rate = paid.Div(billed).Round(4)
	}

	return &InvoiceMetricsResponse{
		Total:             total,
		ByStatus:          byStatus,
		PaidAmount:        valueobject.NewMoneyMXN(paid),
		OutstandingAmount: valueobject.NewMoneyMXN(outstanding),
		OverdueAmount:     valueobject.NewMoneyMXN(overdue),
		CollectionRate:    rate,
	}, nil
}
