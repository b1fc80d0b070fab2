package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/sudheeshpoolakkal/vespera-sub001/internal/delivery/dto"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/entity"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// clinicNow is a Monday morning before the consulting day starts.
var clinicNow = time.Date(2025, time.August, 4, 9, 0, 0, 0, time.UTC)

// clinic wires the use cases over one in-memory store.
type clinic struct {
	t *testing.T
	s *store

	now   time.Time
	media *fakeMediaStorage
	pay   *fakePaymentGateway
	cache *memorySlotCache

	booking      *bookingUsecase
	calendar     *slotCalendarUsecase
	appointments *appointmentUsecase
	ratings      *ratingUsecase
	payments     *paymentUsecase
	locker       *service.SlotLocker

	admin    entity.Principal
	hospital entity.Principal
}

func newClinic(t *testing.T) *clinic {
	t.Helper()

	c := &clinic{
		t:     t,
		s:     newStore(),
		now:   clinicNow,
		media: &fakeMediaStorage{},
		pay:   &fakePaymentGateway{},
		cache: newMemorySlotCache(),
		admin: entity.Principal{UserID: uuid.New(), Role: entity.RoleAdmin},
	}

	log := quietLogger()
	tx := fakeTransactor{c.s}
	audit := service.NewAuditService(log, fakeAuditLogRepo{c.s})
	events := service.NewEventRecorder(fakeOutboxRepo{c.s})
	clock := func() time.Time { return c.now }

	c.locker = service.NewSlotLocker(log)
	t.Cleanup(c.locker.Stop)

	c.booking = NewBookingUsecase(tx, log, fakeUserRepo{c.s}, fakeDoctorRepo{c.s}, fakePatientRepo{c.s},
		fakeAppointmentRepo{c.s}, fakeBookedSlotRepo{c.s}, fakeCustomSlotRepo{c.s}, c.media, c.locker,
		c.cache, audit, events, nil, time.UTC).(*bookingUsecase)
	c.booking.now = clock

	c.calendar = NewSlotCalendarUsecase(tx, log, fakeDoctorRepo{c.s}, fakeBookedSlotRepo{c.s},
		fakeCustomSlotRepo{c.s}, c.cache, audit, time.UTC).(*slotCalendarUsecase)
	c.calendar.now = clock

	c.appointments = NewAppointmentUsecase(tx, log, fakeAppointmentRepo{c.s}, fakeBookedSlotRepo{c.s},
		c.cache, audit, events, nil, time.UTC).(*appointmentUsecase)
	c.appointments.now = clock

	c.ratings = NewRatingUsecase(tx, log, fakeAppointmentRepo{c.s}, fakeDoctorRepo{c.s},
		fakeReviewRepo{c.s}, audit, events, nil).(*ratingUsecase)

	c.payments = NewPaymentUsecase(tx, log, fakeAppointmentRepo{c.s}, c.pay, audit, events, nil).(*paymentUsecase)
	c.payments.now = clock

	c.hospital = c.addHospital(entity.HospitalStatusApproved)
	return c
}

func (c *clinic) addHospital(status entity.HospitalStatus) entity.Principal {
	id := uuid.New()
	c.s.users[id] = entity.User{ID: id, RoleID: entity.RoleIDHospital, Email: id.String() + "@hospital.test", FullName: "City Hospital"}
	c.s.hospitals[id] = entity.Hospital{UserID: id, Name: "City Hospital", Status: status}
	return entity.Principal{UserID: id, Role: entity.RoleHospital}
}

func (c *clinic) addDoctor(fees int64) entity.Principal {
	id := uuid.New()
	hospitalID := c.hospital.UserID
	c.s.users[id] = entity.User{ID: id, RoleID: entity.RoleIDDoctor, Email: id.String() + "@doctor.test", FullName: "Dr. Meera Nair"}
	c.s.doctors[id] = entity.DoctorProfile{
		UserID:     id,
		HospitalID: &hospitalID,
		Speciality: "Dermatologist",
		Fees:       decimal.NewFromInt(fees),
		Available:  true,
		Approved:   true,
	}
	return entity.Principal{UserID: id, Role: entity.RoleDoctor}
}

func (c *clinic) addPatient(name string) entity.Principal {
	id := uuid.New()
	c.s.users[id] = entity.User{ID: id, RoleID: entity.RoleIDPatient, Email: id.String() + "@patient.test", FullName: name}
	c.s.patients[id] = entity.PatientProfile{UserID: id, PhoneNumber: "9000000000", Gender: entity.GenderFemale}
	return entity.Principal{UserID: id, Role: entity.RolePatient}
}

func (c *clinic) doctor(id uuid.UUID) entity.DoctorProfile {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.s.doctors[id]
}

func (c *clinic) appointment(id uuid.UUID) entity.Appointment {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.s.appointments[id]
}

func (c *clinic) setCustomSlots(doctor entity.Principal, date string, times ...string) {
	c.t.Helper()
	_, err := c.calendar.SetCustomSlots(context.Background(), doctor, doctor.UserID, &dto.SetCustomSlotsRequest{SlotDate: date, Times: times})
	require.NoError(c.t, err)
}

func (c *clinic) book(patient entity.Principal, doctorID uuid.UUID, date, t string) (*dto.AppointmentResponse, error) {
	return c.booking.Book(context.Background(), patient, &dto.BookAppointmentRequest{
		DoctorID:         doctorID,
		SlotDate:         date,
		SlotTime:         t,
		ConsultationMode: string(entity.ConsultationOnline),
		Description:      "Rash on the left arm",
	})
}

func (c *clinic) mustBook(patient entity.Principal, doctorID uuid.UUID, date, t string) *dto.AppointmentResponse {
	c.t.Helper()
	resp, err := c.book(patient, doctorID, date, t)
	require.NoError(c.t, err)
	return resp
}

// available returns the times shown as bookable for the date.
func (c *clinic) available(doctorID uuid.UUID, date string) []string {
	c.t.Helper()
	day, err := c.calendar.GetSlotsForDate(context.Background(), doctorID, date)
	require.NoError(c.t, err)

	var out []string
	for _, s := range day.Slots {
		if s.Available {
			out = append(out, s.Time)
		}
	}
	return out
}

// activeCount counts non-cancelled appointments on the triple.
func (c *clinic) activeCount(doctorID uuid.UUID, date, t string) int {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	n := 0
	for _, a := range c.s.appointments {
		if !a.Cancelled && a.DoctorID == doctorID && a.SlotDate.String() == date && a.SlotTime.String() == t {
			n++
		}
	}
	return n
}
