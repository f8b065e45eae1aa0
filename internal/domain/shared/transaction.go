package shared

import "context"

// TxManager runs a unit of work inside a database transaction. The context
// passed to fn carries the transaction; repositories resolve it so that all
// operations within fn share the same transaction and commit or roll back
// together.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
