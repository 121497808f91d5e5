// Package memory implements the repository interfaces in process memory. It backs the
// "memory" database driver for local runs and the service and API tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"courtside/team-ops/internal/domain"
	"courtside/team-ops/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store holds every collection. Each repository accessor shares the same lock.
type Store struct {
	mu       sync.RWMutex
	users    map[primitive.ObjectID]domain.User
	sessions map[primitive.ObjectID]domain.Session
	practice map[primitive.ObjectID]domain.PracticeData
	roster   map[primitive.ObjectID]domain.Player
	wellness map[string]domain.WellnessDay
	plans    map[primitive.ObjectID]domain.Plan
	folders  map[primitive.ObjectID]domain.Folder

	watchMu  sync.Mutex
	watchers map[int]func(domain.PracticeData)
	nextW    int
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{
		users:    map[primitive.ObjectID]domain.User{},
		sessions: map[primitive.ObjectID]domain.Session{},
		practice: map[primitive.ObjectID]domain.PracticeData{},
		roster:   map[primitive.ObjectID]domain.Player{},
		wellness: map[string]domain.WellnessDay{},
		plans:    map[primitive.ObjectID]domain.Plan{},
		folders:  map[primitive.ObjectID]domain.Folder{},
		watchers: map[int]func(domain.PracticeData){},
	}
}

func (s *Store) Users() repository.UserRepository         { return userRepo{s} }
func (s *Store) Sessions() repository.SessionRepository   { return sessionRepo{s} }
func (s *Store) Practices() repository.PracticeRepository { return practiceRepo{s} }
func (s *Store) PracticeWatcher() repository.PracticeWatcher {
	return practiceRepo{s}
}
func (s *Store) Roster() repository.RosterRepository     { return rosterRepo{s} }
func (s *Store) Wellness() repository.WellnessRepository { return wellnessRepo{s} }
func (s *Store) Plans() repository.PlanRepository        { return planRepo{s} }
func (s *Store) Folders() repository.FolderRepository    { return folderRepo{s} }

// --- users ---

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	r.s.users[user.ID] = *user
	return user.ID, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r userRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

// --- sessions ---

type sessionRepo struct{ s *Store }

func copySession(in domain.Session) domain.Session {
	in.Parts = append([]domain.SessionPart(nil), in.Parts...)
	return in
}

func (r sessionRepo) slotTaken(date string, slot domain.Slot, except primitive.ObjectID) bool {
	for id, existing := range r.s.sessions {
		if id != except && existing.Date == date && existing.Slot == slot {
			return true
		}
	}
	return false
}

func (r sessionRepo) Create(_ context.Context, session *domain.Session) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.slotTaken(session.Date, session.Slot, primitive.NilObjectID) {
		return primitive.NilObjectID, repository.ErrDuplicate
	}
	session.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	session.CreatedAt, session.UpdatedAt = now, now
	r.s.sessions[session.ID] = copySession(*session)
	return session.ID, nil
}

func (r sessionRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sess, ok := r.s.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	sess = copySession(sess)
	return &sess, nil
}

func (r sessionRepo) GetBySlot(_ context.Context, date string, slot domain.Slot) (*domain.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, sess := range r.s.sessions {
		if sess.Date == date && sess.Slot == slot {
			sess = copySession(sess)
			return &sess, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r sessionRepo) ListByDateRange(_ context.Context, from, to string) ([]domain.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Session{}
	for _, sess := range r.s.sessions {
		if (from == "" || sess.Date >= from) && (to == "" || sess.Date <= to) {
			out = append(out, copySession(sess))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Slot < out[j].Slot
	})
	return out, nil
}

func (r sessionRepo) Update(_ context.Context, session *domain.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.sessions[session.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.slotTaken(session.Date, session.Slot, session.ID) {
		return repository.ErrDuplicate
	}
	session.CreatedAt = existing.CreatedAt
	session.UpdatedAt = time.Now().UTC()
	r.s.sessions[session.ID] = copySession(*session)
	return nil
}

func (r sessionRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sessions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.sessions, id)
	return nil
}

// --- practice data ---

type practiceRepo struct{ s *Store }

func copyPractice(in domain.PracticeData) domain.PracticeData {
	out := in
	out.DrillRows = append([]domain.DrillRow(nil), in.DrillRows...)
	out.Attendance = make(map[string]domain.AttendanceRecord, len(in.Attendance))
	for k, v := range in.Attendance {
		out.Attendance[k] = v
	}
	out.SurveyData = make(map[string]domain.SurveyResponse, len(in.SurveyData))
	for k, v := range in.SurveyData {
		out.SurveyData[k] = v
	}
	out.GymSurveyData = make(map[string]domain.GymSurveyResponse, len(in.GymSurveyData))
	for k, v := range in.GymSurveyData {
		out.GymSurveyData[k] = v
	}
	out.SurveyPlayers = append([]string(nil), in.SurveyPlayers...)
	out.GymSurveyPlayers = append([]string(nil), in.GymSurveyPlayers...)
	out.EnsureMaps()
	return out
}

// mutate applies fn to the stored blob (creating it when upsert is set) and notifies watchers.
func (r practiceRepo) mutate(sessionID primitive.ObjectID, upsert bool, fn func(p *domain.PracticeData)) error {
	r.s.mu.Lock()
	p, ok := r.s.practice[sessionID]
	if !ok {
		if !upsert {
			r.s.mu.Unlock()
			return repository.ErrNotFound
		}
		p = *domain.NewPracticeData(sessionID)
	}
	p = copyPractice(p)
	fn(&p)
	r.s.practice[sessionID] = p
	snapshot := copyPractice(p)
	r.s.mu.Unlock()

	r.s.notify(snapshot)
	return nil
}

func (r practiceRepo) Get(_ context.Context, sessionID primitive.ObjectID) (*domain.PracticeData, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.practice[sessionID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p = copyPractice(p)
	return &p, nil
}

func (r practiceRepo) ListBySessionIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.PracticeData, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.PracticeData{}
	for _, id := range ids {
		if p, ok := r.s.practice[id]; ok {
			out = append(out, copyPractice(p))
		}
	}
	return out, nil
}

func (r practiceRepo) SaveDrills(_ context.Context, sessionID primitive.ObjectID, rows []domain.DrillRow, metrics domain.PracticeMetrics, updatedBy string, at time.Time) error {
	return r.mutate(sessionID, true, func(p *domain.PracticeData) {
		p.DrillRows = append([]domain.DrillRow(nil), rows...)
		p.Metrics = metrics
		p.UpdatedAt, p.UpdatedBy = at, updatedBy
	})
}

func (r practiceRepo) SetAttendance(_ context.Context, sessionID primitive.ObjectID, attendance map[string]domain.AttendanceRecord, updatedBy string, at time.Time) error {
	return r.mutate(sessionID, true, func(p *domain.PracticeData) {
		p.Attendance = make(map[string]domain.AttendanceRecord, len(attendance))
		for k, v := range attendance {
			p.Attendance[k] = v
		}
		p.UpdatedAt, p.UpdatedBy = at, updatedBy
	})
}

func (r practiceRepo) OpenSurvey(_ context.Context, sessionID primitive.ObjectID, kind domain.SurveyKind, players []string, at time.Time) error {
	return r.mutate(sessionID, true, func(p *domain.PracticeData) {
		opened := at
		if kind == domain.SurveyGym {
			p.GymSurveyPlayers = append([]string(nil), players...)
			p.GymSurveyOpenedAt = &opened
		} else {
			p.SurveyPlayers = append([]string(nil), players...)
			p.SurveyOpenedAt = &opened
		}
		p.UpdatedAt = at
	})
}

func (r practiceRepo) SetSurveyResponse(_ context.Context, sessionID primitive.ObjectID, playerID string, resp domain.SurveyResponse) error {
	return r.mutate(sessionID, false, func(p *domain.PracticeData) {
		p.SurveyData[playerID] = resp
		p.UpdatedAt = resp.SavedAt
	})
}

func (r practiceRepo) SetGymSurveyResponse(_ context.Context, sessionID primitive.ObjectID, playerID string, resp domain.GymSurveyResponse) error {
	return r.mutate(sessionID, false, func(p *domain.PracticeData) {
		p.GymSurveyData[playerID] = resp
		p.UpdatedAt = resp.SavedAt
	})
}

func (r practiceRepo) Delete(_ context.Context, sessionID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.practice[sessionID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.practice, sessionID)
	return nil
}

// Watch registers fn for every subsequent practice write and blocks until ctx is done.
func (r practiceRepo) Watch(ctx context.Context, fn func(domain.PracticeData)) error {
	r.s.watchMu.Lock()
	id := r.s.nextW
	r.s.nextW++
	r.s.watchers[id] = fn
	r.s.watchMu.Unlock()

	<-ctx.Done()

	r.s.watchMu.Lock()
	delete(r.s.watchers, id)
	r.s.watchMu.Unlock()
	return nil
}

func (s *Store) notify(p domain.PracticeData) {
	s.watchMu.Lock()
	fns := make([]func(domain.PracticeData), 0, len(s.watchers))
	for _, fn := range s.watchers {
		fns = append(fns, fn)
	}
	s.watchMu.Unlock()
	for _, fn := range fns {
		fn(copyPractice(p))
	}
}

// --- roster ---

type rosterRepo struct{ s *Store }

func (r rosterRepo) Create(_ context.Context, player *domain.Player) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	player.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	player.CreatedAt, player.UpdatedAt = now, now
	r.s.roster[player.ID] = *player
	return player.ID, nil
}

func (r rosterRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Player, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.roster[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r rosterRepo) List(_ context.Context, activeOnly bool) ([]domain.Player, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Player{}
	for _, p := range r.s.roster {
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Number != out[j].Number {
			return out[i].Number < out[j].Number
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r rosterRepo) Update(_ context.Context, player *domain.Player) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.roster[player.ID]
	if !ok {
		return repository.ErrNotFound
	}
	player.CreatedAt = existing.CreatedAt
	player.UpdatedAt = time.Now().UTC()
	r.s.roster[player.ID] = *player
	return nil
}

func (r rosterRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.roster[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.roster, id)
	return nil
}

// --- wellness ---

type wellnessRepo struct{ s *Store }

func copyDay(in domain.WellnessDay) domain.WellnessDay {
	out := in
	out.Responses = make(map[string]domain.WellnessResponse, len(in.Responses))
	for k, v := range in.Responses {
		out.Responses[k] = v
	}
	return out
}

func (r wellnessRepo) GetDay(_ context.Context, date string) (*domain.WellnessDay, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	d, ok := r.s.wellness[date]
	if !ok {
		return nil, repository.ErrNotFound
	}
	d = copyDay(d)
	return &d, nil
}

func (r wellnessRepo) SaveDay(_ context.Context, day *domain.WellnessDay, expectedVersion int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.wellness[day.Date]
	if (!ok && expectedVersion != 0) || (ok && stored.Version != expectedVersion) {
		return repository.ErrVersionConflict
	}
	day.Version = expectedVersion + 1
	day.UpdatedAt = time.Now().UTC()
	r.s.wellness[day.Date] = copyDay(*day)
	return nil
}

func (r wellnessRepo) ListRange(_ context.Context, from, to string) ([]domain.WellnessDay, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.WellnessDay{}
	for date, d := range r.s.wellness {
		if date >= from && date <= to {
			out = append(out, copyDay(d))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// --- gym plans ---

type planRepo struct{ s *Store }

func copyPlan(in domain.Plan) domain.Plan {
	out := in
	out.Exercises = append([]domain.PlanExercise(nil), in.Exercises...)
	out.Players = nil
	for _, pl := range in.Players {
		pl.Exercises = append([]domain.PlanExercise(nil), pl.Exercises...)
		out.Players = append(out.Players, pl)
	}
	if in.GroupID != nil {
		g := *in.GroupID
		out.GroupID = &g
	}
	return out
}

func (r planRepo) Create(_ context.Context, plan *domain.Plan) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt, plan.UpdatedAt = now, now
	r.s.plans[plan.ID] = copyPlan(*plan)
	return plan.ID, nil
}

func (r planRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p = copyPlan(p)
	return &p, nil
}

func (r planRepo) List(_ context.Context, f repository.PlanFilter) ([]domain.Plan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Plan{}
	for _, p := range r.s.plans {
		if !f.IncludeArchived && p.IsArchived {
			continue
		}
		if f.GroupID != nil && (p.GroupID == nil || *p.GroupID != *f.GroupID) {
			continue
		}
		out = append(out, copyPlan(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r planRepo) Update(_ context.Context, plan *domain.Plan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.plans[plan.ID]
	if !ok {
		return repository.ErrNotFound
	}
	plan.CreatedAt = existing.CreatedAt
	plan.UpdatedAt = time.Now().UTC()
	r.s.plans[plan.ID] = copyPlan(*plan)
	return nil
}

func (r planRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.plans[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.plans, id)
	return nil
}

func (r planRepo) Ungroup(_ context.Context, folderID primitive.ObjectID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, p := range r.s.plans {
		if p.GroupID != nil && *p.GroupID == folderID {
			p.GroupID = nil
			p.UpdatedAt = time.Now().UTC()
			r.s.plans[id] = p
			n++
		}
	}
	return n, nil
}

type folderRepo struct{ s *Store }

func (r folderRepo) Create(_ context.Context, folder *domain.Folder) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	folder.ID = primitive.NewObjectID()
	folder.CreatedAt = time.Now().UTC()
	r.s.folders[folder.ID] = *folder
	return folder.ID, nil
}

func (r folderRepo) List(_ context.Context) ([]domain.Folder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Folder{}
	for _, f := range r.s.folders {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r folderRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.folders[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.folders, id)
	return nil
}
