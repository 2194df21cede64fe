// Package reports turns per-group activity logs into summarized reports on a
// schedule. The persisted Report row is the durability boundary: it is
// written before delivery, and the previous row's creation time is the
// watermark bounding the next collection window.
package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/taskhub-dev/taskhub/internal/apperrors"
	"github.com/taskhub-dev/taskhub/internal/models"
	"gorm.io/gorm"
)

// Exchange is one prior prompt/response pair, replayed as summarizer history
// when the group opts in.
type Exchange struct {
	Prompt   string
	Response string
}

// Summarizer produces the report text for a prompt. The config argument is
// the group's stored generation config; implementations fall back to their
// own defaults when it is empty. Implemented by gemini.Client; tests
// substitute fakes.
type Summarizer interface {
	Summarize(ctx context.Context, systemInstruction string, config json.RawMessage, history []Exchange, prompt string) (string, error)
}

// Deliverer pushes report text to an external channel. Implemented by
// telegram.Client.
type Deliverer interface {
	Deliver(ctx context.Context, chatID, text string) error
}

type Generator struct {
	DB         *gorm.DB
	Summarizer Summarizer
	Deliverer  Deliverer

	// Now is the clock; tests pin it.
	Now func() time.Time
}

func NewGenerator(gdb *gorm.DB, summarizer Summarizer, deliverer Deliverer) *Generator {
	return &Generator{
		DB:         gdb,
		Summarizer: summarizer,
		Deliverer:  deliverer,
		Now:        time.Now,
	}
}

// RunOnce evaluates every report group for this tick. Due-ness is decided
// per group; one group being not due or failing never short-circuits the
// rest.
func (g *Generator) RunOnce(ctx context.Context) {
	var groups []models.ReportGroup

	if err := g.DB.Preload("Projects").Find(&groups).Error; err != nil {
		log.Printf("Failed to load report groups: %v", err)
		return
	}

	now := g.Now()

	for _, group := range groups {
		due, since, err := g.dueSince(group, now)

		if err != nil {
			log.Printf("Due check failed for group %d (%s): %v", group.ID, group.Name, err)
			continue
		}

		if !due {
			continue
		}

		if err := g.RunGroup(ctx, group, since, now); err != nil {
			log.Printf("Report generation failed for group %d (%s): %v", group.ID, group.Name, err)
		}
	}
}

// dueSince reports whether the group's interval has elapsed since its last
// report, and the watermark the next collection window starts after. A group
// with no report yet is immediately due with an unbounded window start.
func (g *Generator) dueSince(group models.ReportGroup, now time.Time) (bool, time.Time, error) {
	last, err := g.lastReport(group.ID)

	if err != nil {
		return false, time.Time{}, err
	}

	if last == nil {
		return true, time.Time{}, nil
	}

	nextDue := last.CreatedAt.Add(time.Duration(group.IntervalHours) * time.Hour)

	if now.Before(nextDue) {
		return false, time.Time{}, nil
	}

	return true, last.CreatedAt, nil
}

func (g *Generator) lastReport(groupID uint) (*models.Report, error) {
	var report models.Report

	err := g.DB.Where("report_group_id = ?", groupID).
		Order("created_at DESC").
		First(&report).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &report, nil
}

// RunGroup generates one report for group over the window (since, now]:
// collect, summarize, persist, then deliver. Delivery is fire-and-forget;
// its failure is logged and never unwinds the persisted row.
func (g *Generator) RunGroup(ctx context.Context, group models.ReportGroup, since, now time.Time) error {
	prompt, err := g.CollectWindow(group, since, now)

	if err != nil {
		return err
	}

	history, err := g.history(group)

	if err != nil {
		return err
	}

	text, err := g.Summarizer.Summarize(ctx, group.SystemInstruction, json.RawMessage(group.GenerationConfig), history, prompt)

	if err != nil {
		return fmt.Errorf("summarizer for group %d: %w: %v", group.ID, apperrors.ErrExternalService, err)
	}

	// CreatedAt is pinned to the window end: the next window starts exactly
	// where this one stopped, so logs written while the summarizer ran land
	// in the following report instead of vanishing between windows.
	report := models.Report{
		Model:         gorm.Model{CreatedAt: now},
		ReportGroupID: group.ID,
		Prompt:        prompt,
		Text:          text,
	}

	if err := g.DB.Create(&report).Error; err != nil {
		return err
	}

	if err := g.Deliverer.Deliver(ctx, group.ChatID, text); err != nil {
		log.Printf("Delivery failed for group %d (chat %s), report %d kept: %v", group.ID, group.ChatID, report.ID, err)
	}

	return nil
}

// CollectWindow concatenates the group's linked projects' log entries inside
// (since, now], in timestamp order. A zero since means an unbounded window
// start. When nothing matched, the fixed placeholder keeps the summarizer
// input non-empty.
func (g *Generator) CollectWindow(group models.ReportGroup, since, now time.Time) (string, error) {
	projectIDs := make([]uint, 0, len(group.Projects))
	for _, project := range group.Projects {
		projectIDs = append(projectIDs, project.ID)
	}

	if len(projectIDs) == 0 {
		return Placeholder(group), nil
	}

	query := g.DB.Preload("User").
		Where("project_id IN ?", projectIDs).
		Where("created_at <= ?", now).
		Order("created_at ASC")

	if !since.IsZero() {
		query = query.Where("created_at > ?", since)
	}

	var logs []models.Log

	if err := query.Find(&logs).Error; err != nil {
		return "", err
	}

	if len(logs) == 0 {
		return Placeholder(group), nil
	}

	var sb strings.Builder

	for _, entry := range logs {
		sb.WriteString(entry.CreatedAt.Format("2006-01-02 15:04:05"))
		sb.WriteString(" ")
		sb.WriteString(entry.User.Name)
		sb.WriteString(" message: ")
		sb.WriteString(entry.Message)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// Placeholder is the prompt used when a window has no activity.
func Placeholder(group models.ReportGroup) string {
	return fmt.Sprintf("no activity to report for group %s", group.Name)
}

// history returns prior prompt/response pairs in creation order, or nil when
// the group does not replay history.
func (g *Generator) history(group models.ReportGroup) ([]Exchange, error) {
	if !group.ReplayHistory {
		return nil, nil
	}

	var reports []models.Report

	err := g.DB.Where("report_group_id = ?", group.ID).
		Order("created_at ASC").
		Find(&reports).Error

	if err != nil {
		return nil, err
	}

	history := make([]Exchange, 0, len(reports))
	for _, report := range reports {
		history = append(history, Exchange{Prompt: report.Prompt, Response: report.Text})
	}

	return history, nil
}
