// Package reconcile decides which source tickets already have a
// counterpart in the destination, making repeated runs idempotent.
package reconcile

import (
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-migrate/internal/domain"
)

// MatchSet holds the identifiers considered already-migrated for one
// customer during one run. Built fresh per customer, never persisted.
type MatchSet map[string]struct{}

// Add records an identifier; duplicates are suppressed.
func (m MatchSet) Add(id string) {
	m[id] = struct{}{}
}

// Has reports whether an identifier was matched.
func (m MatchSet) Has(id string) bool {
	_, ok := m[id]
	return ok
}

// Strategy decides whether a source ticket already exists in the
// destination. Key returns the identifier a match is recorded under for
// a given source ticket, so callers can interrogate the MatchSet without
// knowing which strategy produced it.
type Strategy interface {
	Name() string
	Key(record domain.TicketRecord) string
	Match(source map[string]domain.TicketRecord, destination []domain.DestinationTicket) MatchSet
}

// Strategy names accepted by ForName.
const (
	StrategySubjectDate = "subject-date"
	StrategyDisplayID   = "display-id"
)

// ForName returns the named strategy, defaulting to display-id matching.
func ForName(name string, logger *zap.Logger) Strategy {
	if name == StrategySubjectDate {
		return NewSubjectDateStrategy(logger)
	}
	return NewDisplayIDStrategy(logger)
}

// subjectDateStrategy matches on exact subject and exact created-time
// string equality, with no normalization of either. It is the fallback
// strategy and logs every non-match at info level.
type subjectDateStrategy struct {
	logger *zap.Logger
}

// NewSubjectDateStrategy constructs the subject+date fallback strategy.
func NewSubjectDateStrategy(logger *zap.Logger) Strategy {
	return &subjectDateStrategy{logger: logger}
}

func (s *subjectDateStrategy) Name() string { return StrategySubjectDate }

func (s *subjectDateStrategy) Key(record domain.TicketRecord) string {
	return record.TicketID
}

func (s *subjectDateStrategy) Match(source map[string]domain.TicketRecord, destination []domain.DestinationTicket) MatchSet {
	matched := make(MatchSet)
	s.logger.Info("comparing tickets by subject and date",
		zap.Int("source_count", len(source)),
		zap.Int("destination_count", len(destination)))

	for ticketID, record := range source {
		if record.Subject == "" || record.CreatedTime == "" {
			s.logger.Warn("skipping source ticket: missing subject or created time",
				zap.String("ticket_id", ticketID))
			continue
		}

		for _, dest := range destination {
			if dest.Subject == "" || dest.CreatedAt == "" {
				s.logger.Warn("skipping destination ticket: missing subject or created_at",
					zap.String("destination_id", dest.TicketID))
				continue
			}

			if record.Subject == dest.Subject && record.CreatedTime == dest.CreatedAt {
				matched.Add(ticketID)
				s.logger.Info("match found",
					zap.String("source_id", ticketID),
					zap.String("destination_id", dest.TicketID))
			} else {
				s.logger.Info("no match",
					zap.String("source_subject", record.Subject),
					zap.String("source_created", record.CreatedTime),
					zap.String("destination_subject", dest.Subject),
					zap.String("destination_created", dest.CreatedAt))
			}
		}
	}

	s.logger.Info("comparison completed", zap.Int("matched", len(matched)))
	return matched
}

// displayIDStrategy matches when the source display id occurs as a
// substring anywhere in the destination subject. Destination tickets
// created by a prior run carry the display id as a subject suffix, so
// this is the active strategy. Substring semantics can over-match short
// ids that occur inside longer ones.
type displayIDStrategy struct {
	logger *zap.Logger
}

// NewDisplayIDStrategy constructs the display-id substring strategy.
func NewDisplayIDStrategy(logger *zap.Logger) Strategy {
	return &displayIDStrategy{logger: logger}
}

func (s *displayIDStrategy) Name() string { return StrategyDisplayID }

func (s *displayIDStrategy) Key(record domain.TicketRecord) string {
	return record.DisplayID
}

func (s *displayIDStrategy) Match(source map[string]domain.TicketRecord, destination []domain.DestinationTicket) MatchSet {
	matched := make(MatchSet)
	s.logger.Info("comparing tickets by display id",
		zap.Int("source_count", len(source)),
		zap.Int("destination_count", len(destination)))

	for ticketID, record := range source {
		if record.Subject == "" {
			s.logger.Warn("skipping source ticket: missing subject",
				zap.String("ticket_id", ticketID))
			continue
		}
		if record.DisplayID == "" {
			s.logger.Warn("skipping source ticket: missing display id",
				zap.String("ticket_id", ticketID))
			continue
		}

		for _, dest := range destination {
			if dest.Subject == "" {
				s.logger.Warn("skipping destination ticket: missing subject",
					zap.String("destination_id", dest.TicketID))
				continue
			}

			if strings.Contains(dest.Subject, record.DisplayID) {
				matched.Add(record.DisplayID)
				s.logger.Info("match found",
					zap.String("display_id", record.DisplayID),
					zap.String("destination_subject", dest.Subject))
			} else {
				s.logger.Info("no match",
					zap.String("source_subject", record.Subject),
					zap.String("destination_subject", dest.Subject))
			}
		}
	}

	s.logger.Info("comparison completed", zap.Int("matched", len(matched)))
	return matched
}
