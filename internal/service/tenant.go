package service

import (
	"context"
	"time"

	"church-service/internal/apperr"
	"church-service/internal/model"
	"church-service/internal/repository"
	"church-service/internal/scope"
	"church-service/prometheus"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TenantService struct {
	store *repository.Store
	log   *zap.Logger
}

func NewTenantService(store *repository.Store, log *zap.Logger) *TenantService {
	return &TenantService{store: store, log: log}
}

type TenantFilter struct {
	Status model.TenantStatus
}

func (s *TenantService) List(ctx context.Context, sc scope.Scope, f TenantFilter, page repository.Page) (*repository.List[model.Tenant], error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	q := s.store.DB(ctx).Model(&model.Tenant{}).Scopes(sc.Apply("id"))
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	return repository.FindPage[model.Tenant](q, page, "name")
}

func (s *TenantService) Get(ctx context.Context, sc scope.Scope, id uuid.UUID) (*model.Tenant, error) {
	var t model.Tenant
	if err := s.store.DB(ctx).Scopes(sc.Apply("id")).Where("id = ?", id).First(&t).Error; err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("church")
		}
		return nil, repository.TranslateError(err)
	}
	return &t, nil
}

// Exists reports whether a live church has the given id.
func (s *TenantService) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	if err := s.store.DB(ctx).Model(&model.Tenant{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, repository.TranslateError(err)
	}
	return n > 0, nil
}

type TenantInput struct {
	Name         *string             `json:"name"`
	Denomination *string             `json:"denomination"`
	Country      *string             `json:"country"`
	Region       *string             `json:"region"`
	City         *string             `json:"city"`
	Address      *string             `json:"address"`
	Timezone     *string             `json:"timezone"`
	Currency     *string             `json:"currency"`
	Status       *model.TenantStatus `json:"status"`
}

func (in TenantInput) apply(t *model.Tenant) error {
	set(&t.Name, in.Name)
	set(&t.Denomination, in.Denomination)
	set(&t.Country, in.Country)
	set(&t.Region, in.Region)
	set(&t.City, in.City)
	set(&t.Address, in.Address)
	set(&t.Timezone, in.Timezone)
	set(&t.Currency, in.Currency)
	set(&t.Status, in.Status)

	if err := required("name", t.Name); err != nil {
		return err
	}
	if t.Status != "" && !t.Status.Valid() {
		return apperr.Validation("invalid status %q", t.Status)
	}
	if len(t.Currency) > 3 {
		return apperr.Validation("currency must be a 3 letter code")
	}
	return nil
}

func (s *TenantService) Create(ctx context.Context, sc scope.Scope, in TenantInput) (*model.Tenant, error) {
	if err := sc.RequireGlobal("create churches"); err != nil {
		return nil, err
	}
	defer prometheus.TrackDBOperation("insert")(time.Now())

	t := &model.Tenant{}
	if err := in.apply(t); err != nil {
		return nil, err
	}
	if err := s.store.DB(ctx).Create(t).Error; err != nil {
		return nil, repository.TranslateError(err)
	}

	prometheus.RecordOperation("tenant", "create")
	s.log.Info("Church created", zap.String("tenant_id", t.ID.String()), zap.String("name", t.Name))
	return t, nil
}

// Update edits a visible church. Only platform admins may change the status.
func (s *TenantService) Update(ctx context.Context, sc scope.Scope, id uuid.UUID, in TenantInput) (*model.Tenant, error) {
	t, err := s.Get(ctx, sc, id)
	if err != nil {
		return nil, err
	}
	if in.Status != nil && *in.Status != t.Status {
		if err := sc.RequireGlobal("change church status"); err != nil {
			return nil, err
		}
	}
	if err := in.apply(t); err != nil {
		return nil, err
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := s.store.DB(ctx).Save(t).Error; err != nil {
		return nil, repository.TranslateError(err)
	}
	prometheus.RecordOperation("tenant", "update")
	return t, nil
}

func (s *TenantService) Delete(ctx context.Context, sc scope.Scope, id uuid.UUID) error {
	if err := sc.RequireGlobal("delete churches"); err != nil {
		return err
	}
	t, err := s.Get(ctx, sc, id)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := s.store.DB(ctx).Delete(t).Error; err != nil {
		return repository.TranslateError(err)
	}

	prometheus.RecordOperation("tenant", "delete")
	s.log.Info("Church deleted", zap.String("tenant_id", id.String()))
	return nil
}
