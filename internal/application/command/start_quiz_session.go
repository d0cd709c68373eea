package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/brainspark/brainspark-engine/internal/domain/quiz"
	"github.com/brainspark/brainspark-engine/internal/domain/shared"
	"github.com/brainspark/brainspark-engine/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// START QUIZ SESSION COMMAND
// Assembles a quiz session: shuffles the question pool, takes the
// requested count, and retries while the ordering matches one the user
// has already seen. After the attempt budget is spent a repeated
// ordering is accepted and logged rather than failing the request.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultSessionHistoryWindow bounds how many past sessions are checked
// for repeated orderings.
const DefaultSessionHistoryWindow = 50

// StartQuizSessionCommand contains the data to start a quiz session.
type StartQuizSessionCommand struct {
	// UserID is the user taking the quiz.
	UserID string

	// Count is how many questions the session should contain.
	Count int

	// Topic optionally restricts the pool to one topic.
	Topic string

	// Difficulty optionally restricts the pool to one difficulty.
	Difficulty string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c StartQuizSessionCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("start_quiz_session: user_id is required")
	}
	if c.Count <= 0 {
		return shared.ErrInvalidCount
	}
	return nil
}

// StartQuizSessionResult contains the assembled session.
type StartQuizSessionResult struct {
	// SessionID identifies the stored session record.
	SessionID string

	// Questions are the session's questions in presentation order.
	Questions []*quiz.Question

	// OrderRepeated is true when the selector had to accept an
	// ordering the user has already seen.
	OrderRepeated bool

	// Attempts is how many shuffles were needed.
	Attempts int

	// Events contains domain events generated.
	Events []shared.Event
}

// StartQuizSessionHandler handles the StartQuizSessionCommand.
type StartQuizSessionHandler struct {
	questionRepo   quiz.QuestionRepository
	sessionRepo    quiz.SessionRepository
	selector       *quiz.Selector
	eventPublisher shared.EventPublisher
	log            *logger.Logger

	historyWindow int
}

// NewStartQuizSessionHandler creates a new handler. A non-positive
// historyWindow falls back to DefaultSessionHistoryWindow.
func NewStartQuizSessionHandler(
	questionRepo quiz.QuestionRepository,
	sessionRepo quiz.SessionRepository,
	selector *quiz.Selector,
	eventPublisher shared.EventPublisher,
	log *logger.Logger,
	historyWindow int,
) *StartQuizSessionHandler {
	if historyWindow <= 0 {
		historyWindow = DefaultSessionHistoryWindow
	}
	return &StartQuizSessionHandler{
		questionRepo:   questionRepo,
		sessionRepo:    sessionRepo,
		selector:       selector,
		eventPublisher: eventPublisher,
		log:            log,
		historyWindow:  historyWindow,
	}
}

// Handle executes the start quiz session command.
func (h *StartQuizSessionHandler) Handle(
	ctx context.Context,
	cmd StartQuizSessionCommand,
) (*StartQuizSessionResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("start_quiz_session: validation failed: %w", err)
	}

	pool, err := h.questionRepo.ListIDs(ctx, quiz.PoolFilter{
		Topic:      cmd.Topic,
		Difficulty: cmd.Difficulty,
		ActiveOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("start_quiz_session: failed to load question pool: %w", err)
	}
	if len(pool) < cmd.Count {
		return nil, shared.ErrPoolTooSmall
	}

	recentKeys, err := h.sessionRepo.RecentOrderingKeys(ctx, cmd.UserID, h.historyWindow)
	if err != nil {
		return nil, fmt.Errorf("start_quiz_session: failed to load session history: %w", err)
	}
	seen := make(map[string]struct{}, len(recentKeys))
	for _, key := range recentKeys {
		seen[key] = struct{}{}
	}

	selection, err := h.selector.Select(pool, cmd.Count, seen)
	if err != nil {
		return nil, fmt.Errorf("start_quiz_session: selection failed: %w", err)
	}

	if selection.Repeated {
		h.log.Warn("accepted repeated question ordering after exhausting shuffle attempts",
			logger.UserID(cmd.UserID),
			logger.QuestionCount(cmd.Count),
			logger.Attempts(selection.Attempts),
		)
	}

	record := quiz.NewSessionRecord(uuid.NewString(), cmd.UserID, selection.QuestionIDs)
	if err := h.sessionRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("start_quiz_session: failed to store session: %w", err)
	}

	questions, err := h.questionRepo.GetByIDs(ctx, selection.QuestionIDs)
	if err != nil {
		return nil, fmt.Errorf("start_quiz_session: failed to load questions: %w", err)
	}

	result := &StartQuizSessionResult{
		SessionID:     record.ID,
		Questions:     questions,
		OrderRepeated: selection.Repeated,
		Attempts:      selection.Attempts,
		Events:        make([]shared.Event, 0, 1),
	}

	event := shared.NewQuizSessionCreatedEvent(cmd.UserID, record.ID, cmd.Count, selection.Repeated)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	result.Events = append(result.Events, event)

	for _, e := range result.Events {
		_ = h.eventPublisher.Publish(e)
	}

	return result, nil
}
