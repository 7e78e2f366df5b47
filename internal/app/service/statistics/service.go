package statistics

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/brightharbor/storefront/internal/models"
	"github.com/brightharbor/storefront/pkg/types"
)

type StatisticType string

const (
	StatisticTypeDailyOrderCount StatisticType = "daily_order_count"
	StatisticTypeDailyRevenue    StatisticType = "daily_revenue"
	StatisticTypeTotalRevenue    StatisticType = "total_revenue"
	StatisticTypeDailyLeadCount  StatisticType = "daily_lead_count"
	StatisticTypeTierBreakdown   StatisticType = "tier_breakdown"
)

// ErrInvalidRequest marks caller mistakes so the HTTP layer can answer 400
// instead of 500.
var ErrInvalidRequest = errors.New("invalid statistic request")

var statisticTypes = []StatisticType{
	StatisticTypeDailyOrderCount,
	StatisticTypeDailyRevenue,
	StatisticTypeTotalRevenue,
	StatisticTypeDailyLeadCount,
	StatisticTypeTierBreakdown,
}

type DashboardStatisticDataItem struct {
	ID StatisticType `json:"id"`
}

type DashboardStatisticRequest struct {
	Filters   []*types.CommonFilter         `json:"filters"`
	DataItems []*DashboardStatisticDataItem `json:"data_items"`
}

type DashboardStatisticResponseDataItem struct {
	Date  string `json:"date,omitempty"`
	Label string `json:"label,omitempty"`
	Value int64  `json:"value"`
}

type DashboardStatisticResponse struct {
	DataItems map[StatisticType][]DashboardStatisticResponseDataItem `json:"data_items"`
}

// Service computes dashboard aggregations straight from the database. There
// is no cache; every request re-reads through the store.
type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) getDailyOrderCount(ctx context.Context, req *DashboardStatisticRequest) ([]DashboardStatisticResponseDataItem, error) {
	var results []DashboardStatisticResponseDataItem
	q := s.db.WithContext(ctx).Table((models.Order{}).TableName()).
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') as date, count(*) as value").
		Where("status = ?", models.OrderStatusPaid).
		Where(clause.Where{Exprs: []clause.Expression{types.FiltersWhere{Filters: req.Filters}}}).
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Order("date")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyRevenue(ctx context.Context, req *DashboardStatisticRequest) ([]DashboardStatisticResponseDataItem, error) {
	var results []DashboardStatisticResponseDataItem
	q := s.db.WithContext(ctx).Table((models.Order{}).TableName()).
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') as date, currency AS label, sum(amount) as value").
		Where("status = ?", models.OrderStatusPaid).
		Where(clause.Where{Exprs: []clause.Expression{types.FiltersWhere{Filters: req.Filters}}}).
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Group("currency").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}, Desc: true})
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getTotalRevenue(ctx context.Context, _ *DashboardStatisticRequest) ([]DashboardStatisticResponseDataItem, error) {
	var results []DashboardStatisticResponseDataItem
	err := s.db.WithContext(ctx).Table((models.Order{}).TableName()).
		Select("currency AS label, COALESCE(sum(amount), 0) as value").
		Where("status = ?", models.OrderStatusPaid).
		Group("currency").
		Order("label").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyLeadCount(ctx context.Context, req *DashboardStatisticRequest) ([]DashboardStatisticResponseDataItem, error) {
	var results []DashboardStatisticResponseDataItem
	q := s.db.WithContext(ctx).Table((models.ContactSubmission{}).TableName()).
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') as date, count(*) as value").
		Where(clause.Where{Exprs: []clause.Expression{types.FiltersWhere{Filters: req.Filters}}}).
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Order("date")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getTierBreakdown(ctx context.Context, _ *DashboardStatisticRequest) ([]DashboardStatisticResponseDataItem, error) {
	var results []DashboardStatisticResponseDataItem
	err := s.db.WithContext(ctx).Table((models.Customer{}).TableName()).
		Select("COALESCE(tier, 'none') AS label, count(*) as value").
		Group("tier").
		Order("label").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getStatistic(ctx context.Context, req *DashboardStatisticRequest, item *DashboardStatisticDataItem) ([]DashboardStatisticResponseDataItem, error) {
	switch item.ID {
	case StatisticTypeDailyOrderCount:
		return s.getDailyOrderCount(ctx, req)
	case StatisticTypeDailyRevenue:
		return s.getDailyRevenue(ctx, req)
	case StatisticTypeTotalRevenue:
		return s.getTotalRevenue(ctx, req)
	case StatisticTypeDailyLeadCount:
		return s.getDailyLeadCount(ctx, req)
	case StatisticTypeTierBreakdown:
		return s.getTierBreakdown(ctx, req)
	default:
		return nil, fmt.Errorf("invalid data item id: %s", item.ID)
	}
}

// GetDashboardStatistic batches the requested aggregations; the independent
// read queries run in parallel.
func (s *Service) GetDashboardStatistic(ctx context.Context, req *DashboardStatisticRequest) (*DashboardStatisticResponse, error) {
	if req == nil || len(req.DataItems) == 0 {
		return nil, fmt.Errorf("%w: no data items requested", ErrInvalidRequest)
	}
	for _, item := range req.DataItems {
		// A JSON body like {"data_items":[null]} binds a nil entry.
		if item == nil {
			return nil, fmt.Errorf("%w: null data item", ErrInvalidRequest)
		}
		if !lo.Contains(statisticTypes, item.ID) {
			return nil, fmt.Errorf("%w: invalid data item id %s", ErrInvalidRequest, item.ID)
		}
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(req.DataItems))
	resChan := make(chan *lo.Entry[StatisticType, []DashboardStatisticResponseDataItem], len(req.DataItems))

	for _, item := range req.DataItems {
		wg.Add(1)
		go func(di *DashboardStatisticDataItem) {
			defer wg.Done()
			res, err := s.getStatistic(ctx, req, di)
			if err != nil {
				errChan <- fmt.Errorf("failed to fetch %s: %w", di.ID, err)
				return
			}
			resChan <- &lo.Entry[StatisticType, []DashboardStatisticResponseDataItem]{Key: di.ID, Value: res}
		}(item)
	}

	go func() { wg.Wait(); close(errChan); close(resChan) }()

	results := make(map[StatisticType][]DashboardStatisticResponseDataItem, len(req.DataItems))
	for i := 0; i < len(req.DataItems); i++ {
		select {
		case err := <-errChan:
			if err != nil {
				return nil, err
			}
		case entry := <-resChan:
			results[entry.Key] = entry.Value
		}
	}
	return &DashboardStatisticResponse{DataItems: results}, nil
}
