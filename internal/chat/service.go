package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ashureev/campusguide/internal/corpus"
	"github.com/ashureev/campusguide/internal/domain"
	"github.com/ashureev/campusguide/internal/llm"
	"github.com/ashureev/campusguide/internal/session"
	"github.com/ashureev/campusguide/internal/timetable"
)

// DefaultSessionID is used when a request carries no session id.
const DefaultSessionID = "default"

// promptHistoryTurns is how many earlier turns accompany an LLM prompt.
const promptHistoryTurns = 2

// ErrEmptyMessage is returned for blank questions.
var ErrEmptyMessage = errors.New("please ask a question")

// Corpus provides the college reference text.
type Corpus interface {
	Text() string
}

// ErrTranscriptsDisabled is returned when no transcript log is configured.
var ErrTranscriptsDisabled = errors.New("transcripts are disabled")

// TranscriptLog persists exchanges for auditing and reads them back.
type TranscriptLog interface {
	RecordTurns(ctx context.Context, entries ...domain.TranscriptEntry) error
	ListTranscript(ctx context.Context, sessionID string, limit int) ([]domain.TranscriptEntry, error)
}

// Deps wires a Service. Sessions, Corpus, Timetable and Generator are required.
type Deps struct {
	Sessions      *session.Store
	Corpus        Corpus
	Timetable     *timetable.Extractor
	Generator     llm.Generator
	Transcripts   TranscriptLog
	ContextBudget int
	Location      *time.Location
	Now           func() time.Time
	Logger        *slog.Logger
}

// Reply is the outcome of a chat turn.
type Reply struct {
	Text   string
	Intent Intent
}

// Service routes student messages to quick answers or the language model.
type Service struct {
	sessions    *session.Store
	corpus      Corpus
	timetable   *timetable.Extractor
	generator   llm.Generator
	transcripts TranscriptLog
	budget      int
	loc         *time.Location
	now         func() time.Time
	logger      *slog.Logger
}

// NewService creates a chat service from its dependencies.
func NewService(d Deps) (*Service, error) {
	switch {
	case d.Sessions == nil:
		return nil, fmt.Errorf("chat: session store is required")
	case d.Corpus == nil:
		return nil, fmt.Errorf("chat: corpus is required")
	case d.Timetable == nil:
		return nil, fmt.Errorf("chat: timetable extractor is required")
	case d.Generator == nil:
		return nil, fmt.Errorf("chat: generator is required")
	}

	s := &Service{
		sessions:    d.Sessions,
		corpus:      d.Corpus,
		timetable:   d.Timetable,
		generator:   d.Generator,
		transcripts: d.Transcripts,
		budget:      d.ContextBudget,
		loc:         d.Location,
		now:         d.Now,
		logger:      d.Logger,
	}
	if s.budget <= 0 {
		s.budget = corpus.DefaultContextBudget
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s, nil
}

// Chat answers message within the given session. Both the message and the
// reply are appended to the session history.
func (s *Service) Chat(ctx context.Context, sessionID, message string) (Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, ErrEmptyMessage
	}
	if sessionID = strings.TrimSpace(sessionID); sessionID == "" {
		sessionID = DefaultSessionID
	}

	intent := Classify(message)
	history := s.sessions.Recent(sessionID, promptHistoryTurns)
	s.sessions.Append(sessionID, domain.Turn{Role: domain.RoleUser, Content: message})

	now := s.now().In(s.loc)
	var text string
	switch intent {
	case IntentDate:
		text = fmt.Sprintf("Today is %s.", now.Format("Monday, January 02, 2006"))
	case IntentTime:
		text = fmt.Sprintf("Current time is %s.", now.Format("03:04 PM"))
	case IntentTimetable:
		text = s.timetableReply(now, dayOffset(message))
	case IntentDayOrder:
		text = dayOrderReply(now, dayOffset(message))
	default:
		excerpt := corpus.RelevantContext(message, s.corpus.Text(), s.budget)
		reply, err := s.generator.Generate(ctx, llm.BuildPrompt(excerpt, history, message))
		if err != nil {
			s.logger.Error("LLM generation failed", "session_id", sessionID, "error", err)
			return Reply{}, fmt.Errorf("generate reply: %w", err)
		}
		text = reply
	}

	s.sessions.Append(sessionID, domain.Turn{Role: domain.RoleAssistant, Content: text})
	s.record(ctx, sessionID, intent, message, text)

	s.logger.Info("Chat reply",
		"session_id", sessionID,
		"intent", intent,
		"message_length", len(message),
		"reply_length", len(text),
	)
	return Reply{Text: text, Intent: intent}, nil
}

// History returns the retained turns of a session.
func (s *Service) History(sessionID string) []domain.Turn {
	return s.sessions.History(sessionID)
}

// Transcript returns the persisted exchanges of a session, oldest first.
// Unlike History it survives restarts and is not capped at the session limit.
func (s *Service) Transcript(ctx context.Context, sessionID string, limit int) ([]domain.TranscriptEntry, error) {
	if s.transcripts == nil {
		return nil, ErrTranscriptsDisabled
	}
	entries, err := s.transcripts.ListTranscript(ctx, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transcript: %w", err)
	}
	return entries, nil
}

// Reset forgets a session's history.
func (s *Service) Reset(sessionID string) bool {
	return s.sessions.Reset(sessionID)
}

func (s *Service) timetableReply(now time.Time, offset int) string {
	target := now.AddDate(0, 0, offset)
	order, ok := timetable.DayOrderFor(target)
	if !ok {
		return fmt.Sprintf("It's Sunday - No classes %s!", dayLabel(offset))
	}
	return fmt.Sprintf("**Day Order %d** Timetable:\n\n%s", order, s.timetable.Lookup(order, s.corpus.Text()))
}

func dayOrderReply(now time.Time, offset int) string {
	target := now.AddDate(0, 0, offset)
	order, ok := timetable.DayOrderFor(target)
	if !ok {
		return fmt.Sprintf("It's Sunday - No day order %s.", dayLabel(offset))
	}
	label := dayLabel(offset)
	return fmt.Sprintf("%s is **Day Order %d**.", strings.ToUpper(label[:1])+label[1:], order)
}

func dayLabel(offset int) string {
	switch offset {
	case 1:
		return "tomorrow"
	case 2:
		return "the day after tomorrow"
	default:
		return "today"
	}
}

// record writes the exchange to the transcript log. Failures are logged only.
func (s *Service) record(ctx context.Context, sessionID string, intent Intent, message, reply string) {
	if s.transcripts == nil {
		return
	}
	at := s.now()
	err := s.transcripts.RecordTurns(context.WithoutCancel(ctx),
		domain.TranscriptEntry{SessionID: sessionID, Role: domain.RoleUser, Content: message, Intent: string(intent), CreatedAt: at},
		domain.TranscriptEntry{SessionID: sessionID, Role: domain.RoleAssistant, Content: reply, Intent: string(intent), CreatedAt: at},
	)
	if err != nil {
		s.logger.Warn("Failed to record transcript", "session_id", sessionID, "error", err)
	}
}
