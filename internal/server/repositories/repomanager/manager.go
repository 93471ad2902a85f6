package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/lifesync/internal/dbx"
	"github.com/dmitrijs2005/lifesync/internal/server/repositories/apikeys"
	"github.com/dmitrijs2005/lifesync/internal/server/repositories/ingestion"
	"github.com/dmitrijs2005/lifesync/internal/server/repositories/records"
)

// RepositoryManager vends repositories bound to a DBTX, so services can run
// several of them inside one dbx.WithTx transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Records(db dbx.DBTX) records.Repository
	APIKeys(db dbx.DBTX) apikeys.Repository
	Ingestion(db dbx.DBTX) ingestion.Repository
}
