package surrealdb

import (
	"fmt"
	"strings"

	"github.com/technotes/technotes/pkg/store"
)

// isNotFound reports errors the SDK returns for selects and deletes that
// matched no record.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Expected a single or multiple results but got 0") ||
		strings.Contains(msg, "cannot unmarshal array into Go value")
}

// classifyIndexError maps UNIQUE index violations to the store sentinels.
// SurrealDB reports them as "Database index `<name>` already contains ...".
func classifyIndexError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if !strings.Contains(msg, "already contains") {
		return err
	}
	switch {
	case strings.Contains(msg, noteTitleIndex):
		return fmt.Errorf("%w: %v", store.ErrDuplicateTitle, err)
	case strings.Contains(msg, userUsernameIndex):
		return fmt.Errorf("%w: %v", store.ErrDuplicateUsername, err)
	}
	return err
}
