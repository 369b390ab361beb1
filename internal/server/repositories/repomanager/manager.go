package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/remotetm/internal/dbx"
	"github.com/dmitrijs2005/remotetm/internal/server/repositories/memories"
	"github.com/dmitrijs2005/remotetm/internal/server/repositories/permissions"
	"github.com/dmitrijs2005/remotetm/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Memories(db dbx.DBTX) memories.Repository
	Permissions(db dbx.DBTX) permissions.Repository
}
