package document

import (
	"strings"

	"github.com/workshop/backend/internal/domain/shared"
)

// numberRetries bounds how many times a create retries after losing the
// document-number race to a concurrent insert.
const numberRetries = 3

// checkVersion compares the caller-supplied version against the loaded
// aggregate. A stale version means the caller acted on an outdated read and
// the mutation is refused before any state changes.
func checkVersion(aggregate shared.AggregateRoot, version int) error {
	if version != aggregate.GetVersion() {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// buildFilter converts list parameters shared by the three document filters
// into a domain filter with defaults applied.
func buildFilter(search string, page, pageSize int, orderBy, orderDir string) shared.Filter {
	filter := shared.DefaultFilter()
	filter.Search = search
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}
	if orderBy != "" {
		filter.OrderBy = orderBy
	}
	if orderDir != "" {
		filter.OrderDir = orderDir
	}
	return filter
}

// splitStatuses parses the comma separated statuses query parameter used by
// kanban style views into a clean slice, dropping empty segments.
func splitStatuses(raw string) []string {
	parts := strings.Split(raw, ",")
	statuses := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			statuses = append(statuses, trimmed)
		}
	}
	return statuses
}
