package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prabhdip/recipebox/internal/domain/recipe"
	"github.com/prabhdip/recipebox/internal/domain/user"
)

// Reset wipes both tables. Recipes go first only out of habit, the cascade
// from users would take them anyway. Not reachable from any route.
func Reset(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `TRUNCATE recipes, users CASCADE`)

	return err
}

// SeedDemo inserts the demo account and two recipes for local development.
func SeedDemo(ctx context.Context, pool *pgxpool.Pool) error {
	u, err := user.New("Prabhdip", "", "")

	if err != nil {
		return err
	}

	err = u.SetPassword("secret123")

	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO users (id, username, password_hash, image_url, bio, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		`,
		u.ID, u.Username, u.PasswordHash, u.ImageURL, u.Bio, u.CreatedAt, u.UpdatedAt,
	)

	if err != nil {
		return err
	}

	demos := []struct {
		title        string
		instructions string
		minutes      int
	}{
		{
			title: "Delicious Shed Ham",
			instructions: "Or kind rest bred with am shed then. In raptures building an bringing be. " +
				"Elderly is detract tedious assured private so to visited. Do travelling " +
				"companions contrasted it. Mistress strongly remember up to. Ham him compass " +
				"you proceed calling detract. Better of always missed we person mr. September " +
				"smallness northward situation few her certainty something.",
			minutes: 60,
		},
		{
			title: "Hasty Party Ham",
			instructions: "As am hastily invited settled at limited civilly fortune me. Really spring in " +
				"extent an by. Judge but built gay party world. Of so am he remember although " +
				"required. Bachelor unpacked be advanced at. Confined in declared marianne is vicinity.",
			minutes: 30,
		},
	}

	for _, d := range demos {
		minutes := d.minutes

		r, err := recipe.NewFromCreateRequest(recipe.CreateRecipeRequest{
			Title:             d.title,
			Instructions:      d.instructions,
			MinutesToComplete: &minutes,
		}, u.ID)

		if err != nil {
			return err
		}

		_, err = pool.Exec(ctx,
			`INSERT INTO recipes (id, title, instructions, minutes_to_complete, user_id, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
			`,
			r.ID, r.Title, r.Instructions, r.MinutesToComplete, r.UserID, r.CreatedAt, r.UpdatedAt,
		)

		if err != nil {
			return err
		}
	}

	return nil
}
