package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"courtside/team-ops/internal/domain"
	"courtside/team-ops/internal/report"
	"courtside/team-ops/internal/repository"
	"courtside/team-ops/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrUnknownReport     = errors.New("unknown report kind")
	ErrExportUnavailable = errors.New("report export storage is not configured")
	ErrDownloadURLError  = errors.New("failed to generate download URL")
)

// Report kinds accepted by Build and Export.
const (
	ReportPractice    = "practice"
	ReportPrePractice = "pre-practice"
	ReportRPE         = "rpe"
	ReportGymPlan     = "gym-plan"
	ReportGame        = "game"
)

// ReportRequest names a report and the record(s) it is built from.
type ReportRequest struct {
	Kind      string             `json:"kind"`
	SessionID primitive.ObjectID `json:"sessionId"`
	PlanID    primitive.ObjectID `json:"planId"`
	From      string             `json:"from"`
	To        string             `json:"to"`
}

// ExportResult points at an uploaded CSV.
type ExportResult struct {
	ObjectKey   string    `json:"objectKey"`
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type ReportService interface {
	PracticeSummary(ctx context.Context, sessionID primitive.ObjectID) (report.Document, error)
	PrePractice(ctx context.Context, sessionID primitive.ObjectID) (report.Document, error)
	RPE(ctx context.Context, from, to string) (report.RPEReport, error)
	GymPlan(ctx context.Context, planID primitive.ObjectID) (report.Document, error)
	GameMinutes(ctx context.Context, sessionID primitive.ObjectID) (report.Document, error)
	Build(ctx context.Context, req ReportRequest) (report.Document, error)
	// Export uploads the report as CSV and returns a presigned download URL.
	Export(ctx context.Context, req ReportRequest) (*ExportResult, error)
}

type reportService struct {
	sessions     SessionService
	practice     PracticeService
	practiceRepo repository.PracticeRepository
	roster       RosterService
	wellness     WellnessService
	plans        PlanService
	games        GameService
	fileStorage  storage.FileStorage
	prefix       string
	urlExpiry    time.Duration
}

// NewReportService wires the report builders. fileStorage may be nil, which disables Export.
func NewReportService(
	sessions SessionService,
	practice PracticeService,
	practiceRepo repository.PracticeRepository,
	roster RosterService,
	wellness WellnessService,
	plans PlanService,
	games GameService,
	fileStorage storage.FileStorage,
	prefix string,
	urlExpiry time.Duration,
) ReportService {
	if urlExpiry <= 0 {
		urlExpiry = storage.DefaultPresignedURLExpiry
	}
	return &reportService{
		sessions:     sessions,
		practice:     practice,
		practiceRepo: practiceRepo,
		roster:       roster,
		wellness:     wellness,
		plans:        plans,
		games:        games,
		fileStorage:  fileStorage,
		prefix:       prefix,
		urlExpiry:    urlExpiry,
	}
}

func (s *reportService) PracticeSummary(ctx context.Context, sessionID primitive.ObjectID) (report.Document, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return report.Document{}, err
	}
	if err := s.practice.Flush(ctx, sessionID); err != nil {
		return report.Document{}, err
	}
	data, err := s.practice.Get(ctx, sessionID)
	if err != nil {
		return report.Document{}, err
	}
	names, err := s.roster.Names(ctx)
	if err != nil {
		return report.Document{}, err
	}
	return report.PracticeSummary(*sess, *data, names), nil
}

func (s *reportService) PrePractice(ctx context.Context, sessionID primitive.ObjectID) (report.Document, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return report.Document{}, err
	}
	attendance, err := s.practice.Attendance(ctx, sessionID)
	if err != nil {
		return report.Document{}, err
	}
	day, err := s.wellness.Day(ctx, sess.Date)
	if err != nil {
		return report.Document{}, err
	}
	names, err := s.roster.Names(ctx)
	if err != nil {
		return report.Document{}, err
	}
	return report.PrePractice(*sess, attendance, day, names), nil
}

// RPE rebuilds the load grid from every session in range.
func (s *reportService) RPE(ctx context.Context, from, to string) (report.RPEReport, error) {
	if _, err := report.DaysBetween(from, to); err != nil {
		return report.RPEReport{}, fmt.Errorf("%w: %v", domain.ErrInvalid, err)
	}
	sessions, err := s.sessions.List(ctx, from, to)
	if err != nil {
		return report.RPEReport{}, err
	}
	ids := make([]primitive.ObjectID, len(sessions))
	for i, sess := range sessions {
		ids[i] = sess.ID
	}
	practices, err := s.practiceRepo.ListBySessionIDs(ctx, ids)
	if err != nil {
		return report.RPEReport{}, err
	}
	names, err := s.roster.Names(ctx)
	if err != nil {
		return report.RPEReport{}, err
	}
	return report.RPEWeekly(sessions, practices, names, from, to)
}

func (s *reportService) GymPlan(ctx context.Context, planID primitive.ObjectID) (report.Document, error) {
	plan, err := s.plans.GetPlan(ctx, planID)
	if err != nil {
		return report.Document{}, err
	}
	names, err := s.roster.Names(ctx)
	if err != nil {
		return report.Document{}, err
	}
	return report.GymPlan(*plan, names), nil
}

func (s *reportService) GameMinutes(ctx context.Context, sessionID primitive.ObjectID) (report.Document, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return report.Document{}, err
	}
	snap, err := s.games.Snapshot(ctx, sessionID)
	if err != nil {
		return report.Document{}, err
	}
	names, err := s.roster.Names(ctx)
	if err != nil {
		return report.Document{}, err
	}
	return report.GameMinutes(fmt.Sprintf("Game minutes: %s %s", sess.Date, sess.Title), snap, names), nil
}

func (s *reportService) Build(ctx context.Context, req ReportRequest) (report.Document, error) {
	switch req.Kind {
	case ReportPractice:
		return s.PracticeSummary(ctx, req.SessionID)
	case ReportPrePractice:
		return s.PrePractice(ctx, req.SessionID)
	case ReportRPE:
		r, err := s.RPE(ctx, req.From, req.To)
		if err != nil {
			return report.Document{}, err
		}
		return r.Document(), nil
	case ReportGymPlan:
		return s.GymPlan(ctx, req.PlanID)
	case ReportGame:
		return s.GameMinutes(ctx, req.SessionID)
	}
	return report.Document{}, ErrUnknownReport
}

func (s *reportService) Export(ctx context.Context, req ReportRequest) (*ExportResult, error) {
	if s.fileStorage == nil {
		return nil, ErrExportUnavailable
	}
	doc, err := s.Build(ctx, req)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := doc.WriteCSV(&buf); err != nil {
		return nil, err
	}

	objectKey := path.Join(s.prefix, req.Kind, fmt.Sprintf("%s-%s.csv", time.Now().UTC().Format("20060102"), uuid.NewString()))
	if err := s.fileStorage.PutObject(ctx, objectKey, "text/csv", &buf); err != nil {
		return nil, err
	}
	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, objectKey, s.urlExpiry)
	if err != nil {
		return nil, ErrDownloadURLError
	}
	return &ExportResult{ObjectKey: objectKey, DownloadURL: url, ExpiresAt: time.Now().UTC().Add(s.urlExpiry)}, nil
}
