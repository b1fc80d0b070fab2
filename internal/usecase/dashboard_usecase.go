package usecase

import (
	"context"
	"sort"

	"github.com/sudheeshpoolakkal/vespera-sub001/internal/converter"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/delivery/dto"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/entity"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const latestAppointments = 5

type DashboardUsecase interface {
	GetDashboard(ctx context.Context, principal entity.Principal) (*dto.DashboardResponse, error)
}

type dashboardUsecase struct {
	tx                repository.Transactor
	log               *logrus.Logger
	appointmentRepo   repository.AppointmentRepository
	doctorProfileRepo repository.DoctorProfileRepository
	platformShare     decimal.Decimal
}

func NewDashboardUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	platformShare decimal.Decimal,
) DashboardUsecase {
	return &dashboardUsecase{
		tx:                tx,
		log:               log,
		appointmentRepo:   appointmentRepo,
		doctorProfileRepo: doctorProfileRepo,
		platformShare:     platformShare,
	}
}

// GetDashboard folds the principal's slice of the ledger. Admins see every
// appointment and earn the platform share; doctors and hospitals see their own
// appointments at full amount.
func (u *dashboardUsecase) GetDashboard(ctx context.Context, principal entity.Principal) (*dto.DashboardResponse, error) {
	var (
		scope      entity.AppointmentScope
		share      = decimal.NewFromInt(1)
		countScope *uuid.UUID
		countDocs  bool
	)

	switch {
	case principal.IsAdmin():
		share = u.platformShare
		countDocs = true
	case principal.IsHospital():
		scope.HospitalID = principal.Ref()
		countScope = principal.Ref()
		countDocs = true
	case principal.IsDoctor():
		scope.DoctorID = principal.Ref()
	default:
		return nil, ErrForbidden
	}

	db := u.tx.DB(ctx)
	appointments, err := u.appointmentRepo.FindByScope(ctx, db, scope, 0)
	if err != nil {
		u.log.Warnf("Failed to load appointments for dashboard: %+v", err)
		return nil, err
	}

	summary := Summarize(appointments, share, latestAppointments)

	resp := &dto.DashboardResponse{
		Appointments:       summary.Count,
		Patients:           summary.DistinctPatients,
		Earnings:           summary.Earnings.StringFixed(2),
		LatestAppointments: converter.AppointmentsToResponses(summary.Latest),
	}

	if countDocs {
		doctors, err := u.doctorProfileRepo.Count(ctx, db, countScope)
		if err != nil {
			u.log.Warnf("Failed to count doctors for dashboard: %+v", err)
			return nil, err
		}
		resp.Doctors = &doctors
	}

	return resp, nil
}

// LedgerSummary is a fold over a slice of the ledger.
type LedgerSummary struct {
	Count            int
	Earnings         decimal.Decimal
	DistinctPatients int
	Latest           []entity.Appointment
}

// Summarize counts every entry, sums the amount of completed or paid entries
// scaled by share, and keeps the latest n entries newest first.
func Summarize(appointments []entity.Appointment, share decimal.Decimal, n int) LedgerSummary {
	earnings := decimal.Zero
	patients := make(map[uuid.UUID]struct{})

	for i := range appointments {
		a := &appointments[i]
		patients[a.PatientID] = struct{}{}
		if a.Earning() {
			earnings = earnings.Add(a.Amount)
		}
	}

	latest := make([]entity.Appointment, len(appointments))
	copy(latest, appointments)
	sort.SliceStable(latest, func(i, j int) bool {
		return latest[i].CreatedAt.After(latest[j].CreatedAt)
	})
	if len(latest) > n {
		latest = latest[:n]
	}

	return LedgerSummary{
		Count:            len(appointments),
		Earnings:         earnings.Mul(share).Round(2),
		DistinctPatients: len(patients),
		Latest:           latest,
	}
}
