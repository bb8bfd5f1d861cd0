// Package seed fills an empty recipe catalog with sample data.
package seed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/recipekeeper/internal/dbx"
	"github.com/dmitrijs2005/recipekeeper/internal/logging"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/repomanager"
)

// Samples returns the recipes inserted into an empty catalog.
func Samples() []models.RecipeDetails {
	return []models.RecipeDetails{
		{
			Name:            "Bolo de Chocolate Fofinho",
			Description:     "Um bolo de chocolate clássico, perfeito para qualquer ocasião.",
			Ingredients:     "Farinha, Açúcar, Chocolate em Pó, Ovos, Leite, Fermento",
			Instructions:    "Misture os secos, adicione os molhados, asse por 40 min.",
			PrepTimeMinutes: 60,
			Category:        "Sobremesa",
			ImageURL:        "https://placehold.co/300x200/d97706/white?text=Bolo+Chocolate",
		},
		{
			Name:            "Salada Caesar Simples",
			Description:     "Uma salada refrescante e saborosa.",
			Ingredients:     "Alface Americana, Frango Grelhado, Croutons, Molho Caesar",
			Instructions:    "Monte a salada e sirva com o molho.",
			PrepTimeMinutes: 20,
			Category:        "Salada",
			ImageURL:        "https://placehold.co/300x200/10b981/white?text=Salada+Caesar",
		},
		{
			Name:            "Lasanha à Bolonhesa",
			Description:     "Uma lasanha rica e reconfortante.",
			Ingredients:     "Massa de Lasanha, Molho Bolonhesa, Molho Branco, Queijo Mussarela",
			Instructions:    "Monte as camadas e asse até dourar.",
			PrepTimeMinutes: 90,
			Category:        "Prato Principal",
			ImageURL:        "https://placehold.co/300x200/ef4444/white?text=Lasanha",
		},
	}
}

type Seeder struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
	log   logging.Logger
}

func NewSeeder(db *sql.DB, repos repomanager.RepositoryManager, log logging.Logger) *Seeder {
	return &Seeder{db: db, repos: repos, log: log.With("module", "seed")}
}

// Run inserts Samples in one transaction when the catalog is empty and
// returns how many recipes were written.
func (s *Seeder) Run(ctx context.Context) (int, error) {
	uow := dbx.NewUnitOfWork(s.db)
	defer uow.Discard()
	repo := s.repos.Recipes(uow)

	n, err := repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count recipes: %w", err)
	}
	if n > 0 {
		s.log.Debug(ctx, "catalog not empty, skipping seed", "recipes", n)
		return 0, nil
	}

	for _, d := range Samples() {
		r, err := models.NewRecipe(d)
		if err != nil {
			return 0, err
		}
		if err := repo.Create(r); err != nil {
			return 0, err
		}
	}

	written, err := uow.Commit(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed recipes: %w", err)
	}

	s.log.Info(ctx, "catalog seeded", "recipes", written)
	return written, nil
}
