package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/recipekeeper/internal/dbx"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/recipes"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/roles"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Roles(db dbx.DBTX) roles.Repository
	Recipes(uow *dbx.UnitOfWork) recipes.Repository
}
