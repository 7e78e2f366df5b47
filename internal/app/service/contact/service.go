package contact

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

// Create persists a contact form submission as a new lead.
func (s *Service) Create(ctx context.Context, sub *models.ContactSubmission) error {
	if sub.ID == "" {
		sub.ID = tool.GenerateUUIDV7()
	}
	if sub.Status == "" {
		sub.Status = models.ContactStatusNew
	}
	if sub.Source == "" {
		sub.Source = "website"
	}
	if err := s.db.WithContext(ctx).Create(sub).Error; err != nil {
		return fmt.Errorf("failed to save contact submission: %w", err)
	}
	return nil
}

// UpdateStatus advances a lead through the pipeline (staff action).
func (s *Service) UpdateStatus(ctx context.Context, id string, status models.ContactStatus, assignedTo, notes *string) error {
	updates := map[string]interface{}{"status": status}
	if assignedTo != nil {
		updates["assigned_to"] = assignedTo
	}
	if notes != nil {
		updates["notes"] = notes
	}
	res := s.db.WithContext(ctx).Model(&models.ContactSubmission{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update contact submission: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("contact submission not found: %s", id)
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
	Items []*models.ContactSubmission `json:"items"`
	Total int64                       `json:"total"`
}

// List returns a filtered, paginated page of leads for the admin dashboard.
func (s *Service) List(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	q := s.db.WithContext(ctx).Model(&models.ContactSubmission{}).
		Where(clause.Where{Exprs: []clause.Expression{types.FiltersWhere{Filters: req.Filters}}})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count contact submissions: %w", err)
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

	var items []*models.ContactSubmission
	err := q.Order(clause.OrderByColumn{Column: clause.Column{Name: sortBy}, Desc: desc}).
		Offset(req.From).
		Limit(size).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list contact submissions: %w", err)
	}
	return &ListResponse{Items: items, Total: total}, nil
}
