package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrConflict indicates that an operation conflicts with the current state of a resource.
var ErrConflict = errors.New("conflicting state")

// ErrImbalancedEntry indicates that a ledger entry's debits do not equal its
// credits. This is a programming error in the caller; it is never retried.
var ErrImbalancedEntry = errors.New("ledger entry debits do not equal credits")

// ErrUnknownAccount indicates that a ledger line references an account code
// that is not present in the chart of accounts.
var ErrUnknownAccount = errors.New("unknown account code")

// ErrDuplicateSourceRef indicates that a ledger entry with the same source
// reference has already been appended. The allocation engine resolves this by
// returning the previously computed result instead of writing twice.
var ErrDuplicateSourceRef = errors.New("source reference already recorded")

// ErrConcurrentModification indicates that another operation holds the
// per-debtor critical section. Safe to retry with backoff.
var ErrConcurrentModification = errors.New("debtor is being modified concurrently")

// ErrStatementInvariant indicates that a generated statement violated the
// balance sheet identity (assets != liabilities + equity). Fatal for the
// request; the inconsistent document is never delivered.
var ErrStatementInvariant = errors.New("statement violates balance sheet identity")
