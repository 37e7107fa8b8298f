package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prabhdip/recipebox/internal/domain/recipe"
	"github.com/prabhdip/recipebox/internal/domain/user"
	"github.com/prabhdip/recipebox/internal/observability"
)

type RecipesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewRecipesRepo(pool *pgxpool.Pool, prom *observability.Prom) *RecipesRepo {
	return &RecipesRepo{pool: pool, prom: prom}
}

func (r *RecipesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}

	return fn()
}

// Create inserts a validated recipe inside one transaction: insert, load the
// owner for response shaping, commit. Any failure rolls the whole thing back.
func (r *RecipesRepo) Create(ctx context.Context, rec recipe.Recipe) (out recipe.WithOwner, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})

	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = r.observe("recipes.create.insert", func() error {
		_, e := tx.Exec(ctx, `
			INSERT INTO recipes (id, title, instructions, minutes_to_complete, user_id, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, rec.ID, rec.Title, rec.Instructions, rec.MinutesToComplete, rec.UserID, rec.CreatedAt, rec.UpdatedAt)
		return e
	})

	if err != nil {
		// owner was deleted between the session check and the insert
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			err = recipe.ErrOwnerMissing
		}

		return
	}

	var owner user.User

	err = r.observe("recipes.create.load_owner", func() error {
		return tx.QueryRow(ctx, `
			SELECT id, username, image_url, bio
			FROM users
			WHERE id = $1
		`, rec.UserID).Scan(&owner.ID, &owner.Username, &owner.ImageURL, &owner.Bio)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = recipe.ErrOwnerMissing
		}

		return
	}

	err = tx.Commit(ctx)

	if err != nil {
		return
	}

	out = recipe.WithOwner{Recipe: rec, Owner: owner}

	return
}

// ListWithOwners returns every recipe joined with its owner's public fields,
// oldest first.
func (r *RecipesRepo) ListWithOwners(ctx context.Context) ([]recipe.WithOwner, error) {
	var rows pgx.Rows

	err := r.observe("recipes.list_with_owners", func() error {
		var e error
		rows, e = r.pool.Query(ctx, `
			SELECT r.id, r.title, r.instructions, r.minutes_to_complete, r.user_id,
			       r.created_at, r.updated_at,
			       u.id, u.username, u.image_url, u.bio
			FROM recipes r
			JOIN users u ON u.id = r.user_id
			ORDER BY r.created_at ASC, r.id ASC
		`)
		return e
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	output := make([]recipe.WithOwner, 0)

	for rows.Next() {
		var w recipe.WithOwner

		err = rows.Scan(
			&w.ID, &w.Title, &w.Instructions, &w.MinutesToComplete, &w.UserID,
			&w.CreatedAt, &w.UpdatedAt,
			&w.Owner.ID, &w.Owner.Username, &w.Owner.ImageURL, &w.Owner.Bio,
		)

		if err != nil {
			return nil, err
		}

		output = append(output, w)
	}

	err = rows.Err()

	if err != nil {
		return nil, err
	}

	return output, nil
}
