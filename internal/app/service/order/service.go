package order

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/brightharbor/storefront/internal/models"
	"github.com/brightharbor/storefront/pkg/tool"
	"github.com/brightharbor/storefront/pkg/types"
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

// Create inserts a new order. There is deliberately no pre-check for an
// existing stripe_session_id: a redelivered checkout event hits the unique
// constraint and the conflict surfaces as an error.
func (s *Service) Create(ctx context.Context, o *models.Order) error {
	if o.StripeSessionID == "" {
		return fmt.Errorf("stripe session id is required")
	}
	if o.ID == "" {
		o.ID = tool.GenerateUUIDV7()
	}
	if o.Status == "" {
		o.Status = models.OrderStatusPending
	}
	if o.FulfillmentStatus == "" {
		o.FulfillmentStatus = models.FulfillmentStatusPending
	}
	if err := s.db.WithContext(ctx).Create(o).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// UpdateStatusBySessionID transitions the order's payment status and returns
// the updated row. A missing order is an error so webhook-sourced callers
// get a retry from the provider.
func (s *Service) UpdateStatusBySessionID(ctx context.Context, sessionID string, status models.OrderStatus) (*models.Order, error) {
	var o models.Order
	err := s.db.WithContext(ctx).Where("stripe_session_id = ?", sessionID).First(&o).Error
	if err != nil {
		return nil, fmt.Errorf("order not found for session %s: %w", sessionID, err)
	}
	if err := s.db.WithContext(ctx).Model(&o).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	o.Status = status
	return &o, nil
}

// MarkFulfillment advances the fulfillment status for the order keyed by
// sessionID.
func (s *Service) MarkFulfillment(ctx context.Context, sessionID string, status models.FulfillmentStatus) error {
	res := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("stripe_session_id = ?", sessionID).
		Update("fulfillment_status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update fulfillment status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order not found for session %s", sessionID)
	}
	return nil
}

type ListRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ListResponse struct {
	Items []*models.Order `json:"items"`
	Total int64           `json:"total"`
}

// List returns a filtered, paginated page of orders for the admin dashboard.
func (s *Service) List(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	q := s.db.WithContext(ctx).Model(&models.Order{}).
		Where(clause.Where{Exprs: []clause.Expression{types.FiltersWhere{Filters: req.Filters}}})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	sortBy := req.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	desc := strings.EqualFold(req.SortOrder, "desc") || req.SortOrder == ""
	size := req.Size
	if size <= 0 || size > 200 {
		size = 20
	}

	var items []*models.Order
	err := q.Order(clause.OrderByColumn{Column: clause.Column{Name: sortBy}, Desc: desc}).
		Offset(req.From).
		Limit(size).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return &ListResponse{Items: items, Total: total}, nil
}
