package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context bundles a request context with an optional GORM transaction.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// New returns a Context without a transaction; repos fall back to their own handle.
func New(ctx context.Context) Context {
	return Context{Ctx: ctx}
}
