package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"courtside/team-ops/internal/domain"
	"courtside/team-ops/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrPlanNotFound   = errors.New("plan not found")
	ErrFolderNotFound = errors.New("folder not found")
)

// PlanInput is the editable content of a plan.
type PlanInput struct {
	Name      string                `json:"name"`
	Type      domain.PlanType       `json:"type"`
	Exercises []domain.PlanExercise `json:"exercises"`
	Players   []domain.PlanPlayer   `json:"players"`
	GroupID   *primitive.ObjectID   `json:"groupId"`
}

type PlanService interface {
	CreatePlan(ctx context.Context, in PlanInput) (*domain.Plan, error)
	GetPlan(ctx context.Context, planID primitive.ObjectID) (*domain.Plan, error)
	ListPlans(ctx context.Context, folderID *primitive.ObjectID, includeArchived bool) ([]domain.Plan, error)
	UpdatePlan(ctx context.Context, planID primitive.ObjectID, in PlanInput) (*domain.Plan, error)
	SetArchived(ctx context.Context, planID primitive.ObjectID, archived bool) (*domain.Plan, error)
	DuplicatePlan(ctx context.Context, planID primitive.ObjectID, name string) (*domain.Plan, error)
	DeletePlan(ctx context.Context, planID primitive.ObjectID) error

	CreateFolder(ctx context.Context, name string) (*domain.Folder, error)
	ListFolders(ctx context.Context) ([]domain.Folder, error)
	// DeleteFolder removes the folder and moves its plans back to the ungrouped list.
	DeleteFolder(ctx context.Context, folderID primitive.ObjectID) error
}

// planService implements the PlanService interface.
type planService struct {
	planRepo   repository.PlanRepository
	folderRepo repository.FolderRepository
}

func NewPlanService(planRepo repository.PlanRepository, folderRepo repository.FolderRepository) PlanService {
	return &planService{planRepo: planRepo, folderRepo: folderRepo}
}

func (s *planService) checkFolder(ctx context.Context, folderID *primitive.ObjectID) error {
	if folderID == nil {
		return nil
	}
	folders, err := s.folderRepo.List(ctx)
	if err != nil {
		return err
	}
	for _, f := range folders {
		if f.ID == *folderID {
			return nil
		}
	}
	return ErrFolderNotFound
}

func (s *planService) CreatePlan(ctx context.Context, in PlanInput) (*domain.Plan, error) {
	plan := &domain.Plan{
		Name:      strings.TrimSpace(in.Name),
		Type:      in.Type,
		Exercises: in.Exercises,
		Players:   in.Players,
		GroupID:   in.GroupID,
	}
	plan.Normalize()
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkFolder(ctx, plan.GroupID); err != nil {
		return nil, err
	}

	planID, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		return nil, err
	}
	return s.GetPlan(ctx, planID)
}

func (s *planService) GetPlan(ctx context.Context, planID primitive.ObjectID) (*domain.Plan, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

func (s *planService) ListPlans(ctx context.Context, folderID *primitive.ObjectID, includeArchived bool) ([]domain.Plan, error) {
	return s.planRepo.List(ctx, repository.PlanFilter{GroupID: folderID, IncludeArchived: includeArchived})
}

func (s *planService) UpdatePlan(ctx context.Context, planID primitive.ObjectID, in PlanInput) (*domain.Plan, error) {
	plan, err := s.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	plan.Name = strings.TrimSpace(in.Name)
	plan.Type = in.Type
	plan.Exercises = in.Exercises
	plan.Players = in.Players
	plan.GroupID = in.GroupID
	plan.Normalize()
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkFolder(ctx, plan.GroupID); err != nil {
		return nil, err
	}
	if err := s.planRepo.Update(ctx, plan); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

func (s *planService) SetArchived(ctx context.Context, planID primitive.ObjectID, archived bool) (*domain.Plan, error) {
	plan, err := s.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.IsArchived == archived {
		return plan, nil
	}
	plan.IsArchived = archived
	if err := s.planRepo.Update(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// DuplicatePlan copies a plan into the same folder. An empty name becomes "<name> (copy)".
func (s *planService) DuplicatePlan(ctx context.Context, planID primitive.ObjectID, name string) (*domain.Plan, error) {
	src, err := s.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = src.Name + " (copy)"
	}
	cp := src.Clone(name)
	if err := cp.Validate(); err != nil {
		return nil, err
	}
	id, err := s.planRepo.Create(ctx, cp)
	if err != nil {
		return nil, err
	}
	return s.GetPlan(ctx, id)
}

func (s *planService) DeletePlan(ctx context.Context, planID primitive.ObjectID) error {
	if err := s.planRepo.Delete(ctx, planID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlanNotFound
		}
		return err
	}
	return nil
}

func (s *planService) CreateFolder(ctx context.Context, name string) (*domain.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrFolderNameRequired
	}
	folder := &domain.Folder{Name: name}
	id, err := s.folderRepo.Create(ctx, folder)
	if err != nil {
		return nil, err
	}
	folder.ID = id
	return folder, nil
}

func (s *planService) ListFolders(ctx context.Context) ([]domain.Folder, error) {
	return s.folderRepo.List(ctx)
}

func (s *planService) DeleteFolder(ctx context.Context, folderID primitive.ObjectID) error {
	if err := s.checkFolder(ctx, &folderID); err != nil {
		return err
	}
	n, err := s.planRepo.Ungroup(ctx, folderID)
	if err != nil {
		return err
	}
	if err := s.folderRepo.Delete(ctx, folderID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrFolderNotFound
		}
		return err
	}
	log.Printf("INFO: [Gym] deleted folder %s, ungrouped %d plans", folderID.Hex(), n)
	return nil
}
