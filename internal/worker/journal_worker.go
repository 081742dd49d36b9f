package worker

import (
	"github.com/spec-kit/ticket-migrate/internal/service"
)

// StartJournalWorker registers journal handlers.
func StartJournalWorker(journalService *service.JournalService) {
	if journalService == nil {
		return
	}
	journalService.RegisterHandlers()
}
