package usecase

import (
	"context"

	"mediconnect/internal/delivery/dto"
	"mediconnect/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
	"gorm.io/gorm"
)

type AdminUsecase interface {
	DashboardStats(ctx context.Context) (*dto.DashboardStatsResponse, error)
}

type adminUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	profileRepo     repository.ProfileRepository
	appointmentRepo repository.AppointmentRepository
	documentRepo    repository.MedicalDocumentRepository
	communityRepo   repository.CommunityRepository
	productRepo     repository.ProductRepository
}

func NewAdminUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	profileRepo repository.ProfileRepository,
	appointmentRepo repository.AppointmentRepository,
	documentRepo repository.MedicalDocumentRepository,
	communityRepo repository.CommunityRepository,
	productRepo repository.ProductRepository,
) AdminUsecase {
	return &adminUsecase{
		db:              db,
		log:             log,
		profileRepo:     profileRepo,
		appointmentRepo: appointmentRepo,
		documentRepo:    documentRepo,
		communityRepo:   communityRepo,
		productRepo:     productRepo,
	}
}

// DashboardStats runs the count queries in parallel. Each task writes its
// own field of the response.
func (u *adminUsecase) DashboardStats(ctx context.Context) (*dto.DashboardStatsResponse, error) {
	stats := &dto.DashboardStatsResponse{
		ProfilesByRole:       map[string]int64{},
		AppointmentsByStatus: map[string]int64{},
	}

	p := pool.New().WithErrors().WithContext(ctx)

	p.Go(func(ctx context.Context) error {
		counts, err := u.profileRepo.CountByRole(ctx, u.db)
		if err != nil {
			return err
		}
		for role, n := range counts {
			stats.ProfilesByRole[role.String()] = n
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		counts, err := u.appointmentRepo.CountByStatus(ctx, u.db)
		if err != nil {
			return err
		}
		for status, n := range counts {
			stats.AppointmentsByStatus[string(status)] = n
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		n, err := u.documentRepo.Count(ctx, u.db)
		stats.Documents = n
		return err
	})
	p.Go(func(ctx context.Context) error {
		n, err := u.communityRepo.CountPosts(ctx, u.db)
		stats.Posts = n
		return err
	})
	p.Go(func(ctx context.Context) error {
		n, err := u.productRepo.Count(ctx)
		stats.Products = n
		return err
	})

	if err := p.Wait(); err != nil {
		u.log.Warnf("Failed to gather dashboard stats: %+v", err)
		return nil, err
	}

	return stats, nil
}
