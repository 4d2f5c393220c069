// Package repomanager defines the factory contract that vends repository
// implementations bound to a database handle or transaction.
package repomanager

import (
	"context"
	"database/sql"

	"magiclink/internal/dbx"
	"magiclink/internal/server/repositories/loginattempts"
	"magiclink/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	LoginAttempts(db dbx.DBTX) loginattempts.Repository
}
