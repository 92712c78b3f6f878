// Package ledger records run and stage history in SQLite.
//
// Each run or step invocation inserts a row in runs, and each stage executed
// within it inserts a row in steps. Rows start in the running state and are
// closed with succeeded or failed plus the error message and kind. The ledger
// is advisory: callers log ledger failures and carry on.
package ledger
