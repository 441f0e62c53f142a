package service

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/accompaniment-planner-api/internal/models"
	"github.com/noah-isme/accompaniment-planner-api/internal/planner"
)

// teacherRoster is the ingested class schedule of a specialist's teachers.
type teacherRoster struct {
	order    []string
	names    map[string]string
	sessions map[string][]planner.CandidateSession
	skipped  int
}

func blockFromModel(row models.AvailabilityBlock) (planner.Block, error) {
	day, err := planner.ParseDay(row.DayOfWeek)
	if err != nil {
		return planner.Block{}, err
	}
	start, err := planner.ParseClock(row.StartTime)
	if err != nil {
		return planner.Block{}, err
	}
	end, err := planner.ParseClock(row.EndTime)
	if err != nil {
		return planner.Block{}, err
	}
	interval, err := planner.IntervalBetween(day, start, end)
	if err != nil {
		return planner.Block{}, err
	}
	return planner.Block{ID: row.ID, Interval: interval, InPersonHours: row.InPersonHours, RemoteHours: row.RemoteHours}, nil
}

func blockToModel(specialistID string, block planner.Block) *models.AvailabilityBlock {
	return &models.AvailabilityBlock{
		ID:            block.ID,
		SpecialistID:  specialistID,
		DayOfWeek:     block.Interval.Day().String(),
		StartTime:     planner.FormatClock(block.Interval.Start()),
		EndTime:       planner.FormatClock(block.Interval.End()),
		InPersonHours: block.InPersonHours,
		RemoteHours:   block.RemoteHours,
	}
}

// ingestBlocks converts stored rows, logging and skipping the malformed ones.
func ingestBlocks(rows []models.AvailabilityBlock, logger *zap.Logger) ([]planner.Block, int) {
	blocks := make([]planner.Block, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		block, err := blockFromModel(row)
		if err != nil {
			skipped++
			logger.Warn("skipping malformed availability block",
				zap.String("block_id", row.ID),
				zap.String("day", row.DayOfWeek),
				zap.String("start", row.StartTime),
				zap.String("end", row.EndTime),
				zap.Error(err),
			)
			continue
		}
		blocks = append(blocks, block)
	}
	return blocks, skipped
}

// ingestClasses builds the roster in position order. A teacher keeps every
// well-formed class; a teacher with none left is dropped from the roster.
func ingestClasses(rows []models.TeacherClass, logger *zap.Logger) teacherRoster {
	roster := teacherRoster{
		names:    make(map[string]string),
		sessions: make(map[string][]planner.CandidateSession),
	}
	for _, row := range rows {
		teacherID := strings.TrimSpace(row.TeacherID)
		session, err := sessionFromClass(row)
		if err != nil || teacherID == "" {
			roster.skipped++
			logger.Warn("skipping malformed teacher class",
				zap.String("class_id", row.ID),
				zap.String("teacher_id", row.TeacherID),
				zap.String("day", row.DayOfWeek),
				zap.String("start", row.StartTime),
				zap.Int("duration", row.DurationMinutes),
				zap.Error(err),
			)
			continue
		}
		if _, seen := roster.sessions[teacherID]; !seen {
			roster.order = append(roster.order, teacherID)
			roster.names[teacherID] = row.TeacherName
		}
		roster.sessions[teacherID] = append(roster.sessions[teacherID], session)
	}
	return roster
}

func sessionFromClass(row models.TeacherClass) (planner.CandidateSession, error) {
	day, err := planner.ParseDay(row.DayOfWeek)
	if err != nil {
		return planner.CandidateSession{}, err
	}
	start, err := planner.ParseClock(row.StartTime)
	if err != nil {
		return planner.CandidateSession{}, err
	}
	interval, err := planner.NewInterval(day, start, row.DurationMinutes)
	if err != nil {
		return planner.CandidateSession{}, err
	}
	return planner.CandidateSession{
		Interval:  interval,
		TeacherID: strings.TrimSpace(row.TeacherID),
		Course:    row.Course,
		Site:      row.Site,
	}, nil
}

// ingestVisits groups confirmed visits by week.
func ingestVisits(rows []models.AccompanimentVisit, logger *zap.Logger) map[planner.WeekID][]planner.CandidateSession {
	out := make(map[planner.WeekID][]planner.CandidateSession)
	for _, row := range rows {
		week, err := planner.ParseWeekID(row.WeekID)
		if err == nil {
			var interval planner.TimeInterval
			interval, err = planner.NewInterval(planner.Day(row.DayOfWeek), row.StartMinute, row.DurationMinutes)
			if err == nil {
				out[week] = append(out[week], planner.CandidateSession{Interval: interval, TeacherID: row.TeacherID, Course: row.Course, Site: row.Site})
				continue
			}
		}
		logger.Warn("skipping malformed confirmed visit", zap.String("visit_id", row.ID), zap.String("week", row.WeekID), zap.Error(err))
	}
	return out
}

func visitsFromSessions(specialistID string, week planner.WeekID, sessions []planner.CandidateSession, confirmedAt time.Time) []models.AccompanimentVisit {
	out := make([]models.AccompanimentVisit, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, models.AccompanimentVisit{
			SpecialistID:    specialistID,
			TeacherID:       s.TeacherID,
			WeekID:          string(week),
			DayOfWeek:       int(s.Interval.Day()),
			StartMinute:     s.Interval.Start(),
			DurationMinutes: s.Interval.Duration(),
			Course:          s.Course,
			Site:            s.Site,
			ConfirmedAt:     confirmedAt,
		})
	}
	return out
}
