package templates

import (
	"strings"

	"hostel-sync-service/internal/domain/entity"
)

// matchesQuery reports whether from and subject satisfy a mailbox query,
// ignoring case
func matchesQuery(q entity.MailQuery, from, subject string) bool {
	if q.From != "" && !strings.Contains(strings.ToLower(from), strings.ToLower(q.From)) {
		return false
	}
	if q.Subject != "" && !strings.Contains(strings.ToUpper(subject), strings.ToUpper(q.Subject)) {
		return false
	}
	return true
}
