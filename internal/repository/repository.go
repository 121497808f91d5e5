package repository

import (
	"context"
	"time"

	"courtside/team-ops/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound        = RepositoryError("not found")
	ErrUpdateFailed    = RepositoryError("update failed")
	ErrDeleteFailed    = RepositoryError("delete failed")
	ErrDuplicate       = RepositoryError("duplicate key")
	ErrVersionConflict = RepositoryError("version conflict")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// SessionRepository stores the schedule. Create returns ErrDuplicate when (date, slot) is taken.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error)
	GetBySlot(ctx context.Context, date string, slot domain.Slot) (*domain.Session, error)
	ListByDateRange(ctx context.Context, from, to string) ([]domain.Session, error)
	Update(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// PracticeRepository stores the per-session practice blob. Get returns ErrNotFound when no
// blob exists; the setters upsert.
type PracticeRepository interface {
	Get(ctx context.Context, sessionID primitive.ObjectID) (*domain.PracticeData, error)
	ListBySessionIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.PracticeData, error)
	SaveDrills(ctx context.Context, sessionID primitive.ObjectID, rows []domain.DrillRow, metrics domain.PracticeMetrics, updatedBy string, at time.Time) error
	SetAttendance(ctx context.Context, sessionID primitive.ObjectID, attendance map[string]domain.AttendanceRecord, updatedBy string, at time.Time) error
	OpenSurvey(ctx context.Context, sessionID primitive.ObjectID, kind domain.SurveyKind, players []string, at time.Time) error
	SetSurveyResponse(ctx context.Context, sessionID primitive.ObjectID, playerID string, resp domain.SurveyResponse) error
	SetGymSurveyResponse(ctx context.Context, sessionID primitive.ObjectID, playerID string, resp domain.GymSurveyResponse) error
	Delete(ctx context.Context, sessionID primitive.ObjectID) error
}

// PracticeWatcher pushes every stored practice blob change to fn until ctx is done.
type PracticeWatcher interface {
	Watch(ctx context.Context, fn func(domain.PracticeData)) error
}

// RosterRepository stores players.
type RosterRepository interface {
	Create(ctx context.Context, player *domain.Player) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Player, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Player, error)
	Update(ctx context.Context, player *domain.Player) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// WellnessRepository stores one aggregate document per date.
// SaveDay writes day only if the stored version equals expectedVersion (0 = must not exist yet)
// and returns ErrVersionConflict otherwise. On success day.Version is incremented.
type WellnessRepository interface {
	GetDay(ctx context.Context, date string) (*domain.WellnessDay, error)
	SaveDay(ctx context.Context, day *domain.WellnessDay, expectedVersion int64) error
	ListRange(ctx context.Context, from, to string) ([]domain.WellnessDay, error)
}

// PlanFilter narrows plan listings.
type PlanFilter struct {
	GroupID         *primitive.ObjectID
	IncludeArchived bool
}

// PlanRepository stores gym plans.
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error)
	List(ctx context.Context, filter PlanFilter) ([]domain.Plan, error)
	Update(ctx context.Context, plan *domain.Plan) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Ungroup(ctx context.Context, folderID primitive.ObjectID) (int64, error)
}

// FolderRepository stores plan folders.
type FolderRepository interface {
	Create(ctx context.Context, folder *domain.Folder) (primitive.ObjectID, error)
	List(ctx context.Context) ([]domain.Folder, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
