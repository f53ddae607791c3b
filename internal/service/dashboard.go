package service

import (
	"context"

	"church-service/internal/model"
	"church-service/internal/repository"
	"church-service/internal/scope"
)

type DashboardService struct {
	store *repository.Store
}

func NewDashboardService(store *repository.Store) *DashboardService {
	return &DashboardService{store: store}
}

type DashboardStats struct {
	TotalUsers       int64 `json:"total_users"`
	ActiveUsers      int64 `json:"active_users"`
	TotalMembers     int64 `json:"total_members"`
	TotalVisitors    int64 `json:"total_visitors"`
	TotalDepartments int64 `json:"total_departments"`
}

// Stats counts the records visible to the caller.
func (s *DashboardService) Stats(ctx context.Context, sc scope.Scope) (*DashboardStats, error) {
	db := s.store.DB(ctx)
	var stats DashboardStats

	counts := []struct {
		m      interface{}
		active bool
		dest   *int64
	}{
		{&model.Account{}, false, &stats.TotalUsers},
		{&model.Account{}, true, &stats.ActiveUsers},
		{&model.Member{}, false, &stats.TotalMembers},
		{&model.Visitor{}, false, &stats.TotalVisitors},
		{&model.Department{}, false, &stats.TotalDepartments},
	}
	for _, c := range counts {
		q := db.Model(c.m).Scopes(sc.Apply("tenant_id"))
		if c.active {
			q = q.Where("is_active = ?", true)
		}
		if err := q.Count(c.dest).Error; err != nil {
			return nil, repository.TranslateError(err)
		}
	}
	return &stats, nil
}
