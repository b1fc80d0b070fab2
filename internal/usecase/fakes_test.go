package usecase

import (
	"context"
	"errors"
	"io"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/entity"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/gateway"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/repository"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/slot"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// fakeTransactor runs fn without a database. The fakes below ignore the *gorm.DB.
// Transactions run one at a time and put the store back the way they found it
// when fn fails.
type fakeTransactor struct{ s *store }

func (fakeTransactor) DB(ctx context.Context) *gorm.DB {
	return nil
}

func (t fakeTransactor) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()

	saved := t.s.snapshot()
	if err := fn(nil); err != nil {
		t.s.restore(saved)
		return err
	}
	return nil
}

// store is an in-memory database shared by the fake repositories.
type store struct {
	txMu         sync.Mutex
	mu           sync.Mutex
	users        map[uuid.UUID]entity.User
	hospitals    map[uuid.UUID]entity.Hospital
	doctors      map[uuid.UUID]entity.DoctorProfile
	patients     map[uuid.UUID]entity.PatientProfile
	appointments map[uuid.UUID]entity.Appointment
	booked       map[string]entity.BookedSlot
	custom       map[string]entity.CustomSlot
	reviews      []entity.Review
	auditLogs    []entity.AuditLog
	outbox       []entity.OutboxEvent
	seq          int64

	// failures makes Create on the named table return the error.
	failures map[string]error
}

// tables is the part of the store a transaction can roll back.
type tables struct {
	users        map[uuid.UUID]entity.User
	hospitals    map[uuid.UUID]entity.Hospital
	doctors      map[uuid.UUID]entity.DoctorProfile
	patients     map[uuid.UUID]entity.PatientProfile
	appointments map[uuid.UUID]entity.Appointment
	booked       map[string]entity.BookedSlot
	custom       map[string]entity.CustomSlot
	reviews      []entity.Review
	auditLogs    []entity.AuditLog
	outbox       []entity.OutboxEvent
	seq          int64
}

func (s *store) snapshot() tables {
	s.mu.Lock()
	defer s.mu.Unlock()
	return tables{
		users:        maps.Clone(s.users),
		hospitals:    maps.Clone(s.hospitals),
		doctors:      maps.Clone(s.doctors),
		patients:     maps.Clone(s.patients),
		appointments: maps.Clone(s.appointments),
		booked:       maps.Clone(s.booked),
		custom:       maps.Clone(s.custom),
		reviews:      slices.Clone(s.reviews),
		auditLogs:    slices.Clone(s.auditLogs),
		outbox:       slices.Clone(s.outbox),
		seq:          s.seq,
	}
}

func (s *store) restore(t tables) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = t.users
	s.hospitals = t.hospitals
	s.doctors = t.doctors
	s.patients = t.patients
	s.appointments = t.appointments
	s.booked = t.booked
	s.custom = t.custom
	s.reviews = t.reviews
	s.auditLogs = t.auditLogs
	s.outbox = t.outbox
	s.seq = t.seq
}

func (s *store) failOn(table string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures == nil {
		s.failures = make(map[string]error)
	}
	s.failures[table] = err
}

// failure must be called with mu held.
func (s *store) failure(table string) error {
	return s.failures[table]
}

func newStore() *store {
	return &store{
		users:        make(map[uuid.UUID]entity.User),
		hospitals:    make(map[uuid.UUID]entity.Hospital),
		doctors:      make(map[uuid.UUID]entity.DoctorProfile),
		patients:     make(map[uuid.UUID]entity.PatientProfile),
		appointments: make(map[uuid.UUID]entity.Appointment),
		booked:       make(map[string]entity.BookedSlot),
		custom:       make(map[string]entity.CustomSlot),
	}
}

func slotKey(doctorID uuid.UUID, date slot.DateKey, t slot.TimeSlot) string {
	return doctorID.String() + "|" + date.String() + "|" + t.String()
}

func dayKey(doctorID uuid.UUID, date slot.DateKey) string {
	return doctorID.String() + "|" + date.String()
}

// users

type fakeUserRepo struct{ s *store }

func (r fakeUserRepo) Create(ctx context.Context, db *gorm.DB, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r fakeUserRepo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r fakeUserRepo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r fakeUserRepo) Update(ctx context.Context, db *gorm.DB, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[user.ID] = *user
	return nil
}

// hospitals

type fakeHospitalRepo struct{ s *store }

func (r fakeHospitalRepo) Create(ctx context.Context, db *gorm.DB, hospital *entity.Hospital) error {
	if err := (fakeUserRepo{r.s}).Create(ctx, db, &hospital.User); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	hospital.UserID = hospital.User.ID
	r.s.hospitals[hospital.UserID] = *hospital
	return nil
}

func (r fakeHospitalRepo) FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.Hospital, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	h, ok := r.s.hospitals[userID]
	if !ok {
		return nil, nil
	}
	h.User = r.s.users[userID]
	return &h, nil
}

func (r fakeHospitalRepo) FindByStatus(ctx context.Context, db *gorm.DB, status entity.HospitalStatus) ([]entity.Hospital, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Hospital
	for _, h := range r.s.hospitals {
		if h.Status == status {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r fakeHospitalRepo) UpdateStatus(ctx context.Context, db *gorm.DB, userID uuid.UUID, status entity.HospitalStatus, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	h, ok := r.s.hospitals[userID]
	if !ok || h.Status != entity.HospitalStatusPending {
		return 0, nil
	}
	h.Status = status
	h.ReviewedAt = &at
	r.s.hospitals[userID] = h
	return 1, nil
}

// doctors

type fakeDoctorRepo struct{ s *store }

func (r fakeDoctorRepo) Create(ctx context.Context, db *gorm.DB, profile *entity.DoctorProfile) error {
	if err := (fakeUserRepo{r.s}).Create(ctx, db, &profile.User); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	profile.UserID = profile.User.ID
	stored := *profile
	stored.Hospital = nil
	r.s.doctors[profile.UserID] = stored
	return nil
}

func (r fakeDoctorRepo) load(d entity.DoctorProfile) entity.DoctorProfile {
	d.User = r.s.users[d.UserID]
	if d.HospitalID != nil {
		if h, ok := r.s.hospitals[*d.HospitalID]; ok {
			d.Hospital = &h
		}
	}
	return d
}

func (r fakeDoctorRepo) FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.doctors[userID]
	if !ok {
		return nil, nil
	}
	d = r.load(d)
	return &d, nil
}

func (r fakeDoctorRepo) FindAll(ctx context.Context, db *gorm.DB, filter *entity.DoctorFilter) ([]entity.DoctorProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.DoctorProfile
	for _, d := range r.s.doctors {
		if !filter.IncludeUnapproved && !d.Approved {
			continue
		}
		if filter.Speciality != "" && d.Speciality != filter.Speciality {
			continue
		}
		if filter.HospitalID != nil && (d.HospitalID == nil || *d.HospitalID != *filter.HospitalID) {
			continue
		}
		out = append(out, r.load(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	return out, nil
}

func (r fakeDoctorRepo) Update(ctx context.Context, db *gorm.DB, profile *entity.DoctorProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := *profile
	stored.Hospital = nil
	r.s.doctors[profile.UserID] = stored
	return nil
}

func (r fakeDoctorRepo) SetAvailability(ctx context.Context, db *gorm.DB, userID uuid.UUID, available bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d := r.s.doctors[userID]
	d.Available = available
	r.s.doctors[userID] = d
	return nil
}

func (r fakeDoctorRepo) Approve(ctx context.Context, db *gorm.DB, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.doctors[userID]
	if !ok || d.Approved {
		return 0, nil
	}
	d.Approved = true
	r.s.doctors[userID] = d
	return 1, nil
}

func (r fakeDoctorRepo) ApplyRating(ctx context.Context, db *gorm.DB, userID uuid.UUID, value int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d := r.s.doctors[userID]
	// (rating * rating_count + value) / (rating_count + 1)
	d.Rating = (d.Rating*float64(d.RatingCount) + float64(value)) / float64(d.RatingCount+1)
	d.RatingCount++
	r.s.doctors[userID] = d
	return nil
}

func (r fakeDoctorRepo) Count(ctx context.Context, db *gorm.DB, hospitalID *uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, d := range r.s.doctors {
		if hospitalID == nil || (d.HospitalID != nil && *d.HospitalID == *hospitalID) {
			n++
		}
	}
	return n, nil
}

// patients

type fakePatientRepo struct{ s *store }

func (r fakePatientRepo) Create(ctx context.Context, db *gorm.DB, profile *entity.PatientProfile) error {
	return r.Update(ctx, db, profile)
}

func (r fakePatientRepo) FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.PatientProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.patients[userID]
	if !ok {
		return nil, nil
	}
	p.User = r.s.users[userID]
	return &p, nil
}

func (r fakePatientRepo) Update(ctx context.Context, db *gorm.DB, profile *entity.PatientProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.patients[profile.UserID] = *profile
	return nil
}

// appointments

type fakeAppointmentRepo struct{ s *store }

func (r fakeAppointmentRepo) Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.appointments {
		if !a.Cancelled && a.DoctorID == appointment.DoctorID && a.SlotDate == appointment.SlotDate && a.SlotTime == appointment.SlotTime {
			return repository.ErrDuplicateSlot
		}
	}
	r.s.seq++
	appointment.CreatedAt = time.Unix(r.s.seq, 0)
	r.s.appointments[appointment.ID] = *appointment
	return nil
}

func (r fakeAppointmentRepo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appointments[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r fakeAppointmentRepo) FindByScope(ctx context.Context, db *gorm.DB, scope entity.AppointmentScope, limit int) ([]entity.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Appointment
	for _, a := range r.s.appointments {
		if scope.DoctorID != nil && a.DoctorID != *scope.DoctorID {
			continue
		}
		if scope.PatientID != nil && a.PatientID != *scope.PatientID {
			continue
		}
		if scope.HospitalID != nil && (a.HospitalID == nil || *a.HospitalID != *scope.HospitalID) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r fakeAppointmentRepo) update(id uuid.UUID, guard func(a entity.Appointment) bool, apply func(a *entity.Appointment)) int64 {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appointments[id]
	if !ok || !guard(a) {
		return 0
	}
	apply(&a)
	r.s.appointments[id] = a
	return 1
}

func (r fakeAppointmentRepo) MarkCancelled(ctx context.Context, db *gorm.DB, id uuid.UUID, at time.Time) (int64, error) {
	return r.update(id,
		func(a entity.Appointment) bool { return !a.Cancelled },
		func(a *entity.Appointment) { a.Cancelled = true; a.CancelledAt = &at }), nil
}

func (r fakeAppointmentRepo) MarkCompleted(ctx context.Context, db *gorm.DB, id uuid.UUID, at time.Time) (int64, error) {
	return r.update(id,
		func(a entity.Appointment) bool { return !a.Cancelled && !a.IsCompleted },
		func(a *entity.Appointment) { a.IsCompleted = true; a.CompletedAt = &at }), nil
}

func (r fakeAppointmentRepo) MarkPaid(ctx context.Context, db *gorm.DB, id uuid.UUID, at time.Time) (int64, error) {
	return r.update(id,
		func(a entity.Appointment) bool { return !a.Cancelled && !a.Payment },
		func(a *entity.Appointment) { a.Payment = true; a.PaidAt = &at }), nil
}

func (r fakeAppointmentRepo) SetRating(ctx context.Context, db *gorm.DB, id uuid.UUID, rating int, review string) (int64, error) {
	return r.update(id,
		func(a entity.Appointment) bool { return a.Rating == nil && a.IsCompleted && !a.Cancelled },
		func(a *entity.Appointment) { a.Rating = &rating; a.Review = review }), nil
}

// booked slots

type fakeBookedSlotRepo struct{ s *store }

func (r fakeBookedSlotRepo) Reserve(ctx context.Context, db *gorm.DB, booked *entity.BookedSlot) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := slotKey(booked.DoctorID, booked.SlotDate, booked.SlotTime)
	if _, taken := r.s.booked[key]; taken {
		return false, nil
	}
	r.s.booked[key] = *booked
	return true, nil
}

func (r fakeBookedSlotRepo) Release(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, date slot.DateKey, t slot.TimeSlot) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := slotKey(doctorID, date, t)
	if _, ok := r.s.booked[key]; !ok {
		return 0, nil
	}
	delete(r.s.booked, key)
	return 1, nil
}

func (r fakeBookedSlotRepo) IsReserved(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, date slot.DateKey, t slot.TimeSlot) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.booked[slotKey(doctorID, date, t)]
	return ok, nil
}

func (r fakeBookedSlotRepo) FindTimes(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, date slot.DateKey) ([]slot.TimeSlot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []slot.TimeSlot
	for _, b := range r.s.booked {
		if b.DoctorID == doctorID && b.SlotDate == date {
			out = append(out, b.SlotTime)
		}
	}
	return out, nil
}

func (r fakeBookedSlotRepo) FindByDoctor(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, from time.Time) ([]entity.BookedSlot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.BookedSlot
	for _, b := range r.s.booked {
		if b.DoctorID == doctorID && !b.Day.Before(from) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r fakeBookedSlotRepo) FindUpcoming(ctx context.Context, db *gorm.DB, from time.Time, limit, offset int) ([]entity.BookedSlot, error) {
	return nil, errors.New("not used")
}

// custom slots

type fakeCustomSlotRepo struct{ s *store }

func (r fakeCustomSlotRepo) Upsert(ctx context.Context, db *gorm.DB, custom *entity.CustomSlot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.custom[dayKey(custom.DoctorID, custom.SlotDate)] = *custom
	return nil
}

func (r fakeCustomSlotRepo) Delete(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, date slot.DateKey) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := dayKey(doctorID, date)
	if _, ok := r.s.custom[key]; !ok {
		return 0, nil
	}
	delete(r.s.custom, key)
	return 1, nil
}

func (r fakeCustomSlotRepo) Find(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, date slot.DateKey) (*entity.CustomSlot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.custom[dayKey(doctorID, date)]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r fakeCustomSlotRepo) FindByDoctor(ctx context.Context, db *gorm.DB, doctorID uuid.UUID) ([]entity.CustomSlot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.CustomSlot
	for _, c := range r.s.custom {
		if c.DoctorID == doctorID {
			out = append(out, c)
		}
	}
	return out, nil
}

// reviews, audit, outbox

type fakeReviewRepo struct{ s *store }

func (r fakeReviewRepo) Create(ctx context.Context, db *gorm.DB, review *entity.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("reviews"); err != nil {
		return err
	}
	r.s.reviews = append(r.s.reviews, *review)
	return nil
}

func (r fakeReviewRepo) FindByDoctorID(ctx context.Context, db *gorm.DB, doctorID uuid.UUID) ([]entity.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Review
	for _, rv := range r.s.reviews {
		if rv.DoctorID == doctorID {
			out = append(out, rv)
		}
	}
	return out, nil
}

type fakeAuditLogRepo struct{ s *store }

func (r fakeAuditLogRepo) Create(ctx context.Context, db *gorm.DB, log *entity.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("audit_logs"); err != nil {
		return err
	}
	log.ID = int64(len(r.s.auditLogs) + 1)
	r.s.auditLogs = append(r.s.auditLogs, *log)
	return nil
}

func (r fakeAuditLogRepo) FindAll(ctx context.Context, db *gorm.DB, limit, offset int) ([]entity.AuditLog, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	total := int64(len(r.s.auditLogs))
	if offset >= len(r.s.auditLogs) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(r.s.auditLogs) {
		end = len(r.s.auditLogs)
	}
	return append([]entity.AuditLog(nil), r.s.auditLogs[offset:end]...), total, nil
}

func (r fakeAuditLogRepo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*entity.AuditLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.auditLogs {
		if l.ID == id {
			return &l, nil
		}
	}
	return nil, nil
}

type fakeOutboxRepo struct{ s *store }

func (r fakeOutboxRepo) Create(ctx context.Context, db *gorm.DB, event *entity.OutboxEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("outbox_events"); err != nil {
		return err
	}
	event.ID = int64(len(r.s.outbox) + 1)
	r.s.outbox = append(r.s.outbox, *event)
	return nil
}

func (r fakeOutboxRepo) FetchUnpublished(ctx context.Context, db *gorm.DB, limit int) ([]entity.OutboxEvent, error) {
	return nil, nil
}

func (r fakeOutboxRepo) MarkPublished(ctx context.Context, db *gorm.DB, ids []int64, at time.Time) error {
	return nil
}

func (s *store) eventTypes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.outbox))
	for i, e := range s.outbox {
		out[i] = e.EventType
	}
	return out
}

func (s *store) auditActions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.auditLogs))
	for i, l := range s.auditLogs {
		out[i] = l.Action
	}
	return out
}

// collaborators

type fakeMediaStorage struct {
	mu       sync.Mutex
	err      error
	uploaded []string
	deleted  []string
}

func (m *fakeMediaStorage) Upload(ctx context.Context, file *gateway.Upload, folder string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	url := "https://media.test/" + folder + "/" + file.FileName
	m.uploaded = append(m.uploaded, url)
	return url, nil
}

func (m *fakeMediaStorage) Delete(ctx context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, url)
	return nil
}

type fakePaymentGateway struct {
	createErr error
	verifyErr error
	session   *gateway.CheckoutSession
	created   []gateway.CheckoutRequest
}

func (g *fakePaymentGateway) CreateCheckout(ctx context.Context, req gateway.CheckoutRequest) (*gateway.CheckoutSession, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.created = append(g.created, req)
	return &gateway.CheckoutSession{ID: "cs_test_1", URL: "https://pay.test/cs_test_1", AppointmentID: req.AppointmentID}, nil
}

func (g *fakePaymentGateway) VerifyCheckout(ctx context.Context, sessionID string) (*gateway.CheckoutSession, error) {
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return g.session, nil
}

// memorySlotCache keeps the same per-day version rules as the Redis cache.
type memorySlotCache struct {
	mu       sync.Mutex
	days     map[string]map[slot.TimeSlot]struct{}
	versions map[string]int64
}

func newMemorySlotCache() *memorySlotCache {
	return &memorySlotCache{
		days:     make(map[string]map[slot.TimeSlot]struct{}),
		versions: make(map[string]int64),
	}
}

func (c *memorySlotCache) BookedTimes(ctx context.Context, doctorID uuid.UUID, date slot.DateKey) ([]slot.TimeSlot, int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := dayKey(doctorID, date)
	day, ok := c.days[key]
	if !ok {
		return nil, c.versions[key], false, nil
	}
	var out []slot.TimeSlot
	for t := range day {
		out = append(out, t)
	}
	return out, c.versions[key], true, nil
}

func (c *memorySlotCache) Store(ctx context.Context, doctorID uuid.UUID, date slot.DateKey, version int64, times []slot.TimeSlot) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := dayKey(doctorID, date)
	if c.versions[key] != version {
		return false, nil
	}
	day := make(map[slot.TimeSlot]struct{}, len(times))
	for _, t := range times {
		day[t] = struct{}{}
	}
	c.days[key] = day
	return true, nil
}

func (c *memorySlotCache) MarkBooked(ctx context.Context, doctorID uuid.UUID, date slot.DateKey, t slot.TimeSlot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := dayKey(doctorID, date)
	c.versions[key]++
	if day, ok := c.days[key]; ok {
		day[t] = struct{}{}
	}
	return nil
}

func (c *memorySlotCache) MarkReleased(ctx context.Context, doctorID uuid.UUID, date slot.DateKey, t slot.TimeSlot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := dayKey(doctorID, date)
	c.versions[key]++
	if day, ok := c.days[key]; ok {
		delete(day, t)
	}
	return nil
}

func (c *memorySlotCache) Invalidate(ctx context.Context, doctorID uuid.UUID, date slot.DateKey) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := dayKey(doctorID, date)
	c.versions[key]++
	delete(c.days, key)
	return nil
}

// racingBookedSlotRepo runs afterFind once, right after the first FindTimes
// has read the table and before the caller gets the rows.
type racingBookedSlotRepo struct {
	fakeBookedSlotRepo
	afterFind func()
}

func (r *racingBookedSlotRepo) FindTimes(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, date slot.DateKey) ([]slot.TimeSlot, error) {
	times, err := r.fakeBookedSlotRepo.FindTimes(ctx, db, doctorID, date)
	if hook := r.afterFind; hook != nil {
		r.afterFind = nil
		hook()
	}
	return times, err
}
