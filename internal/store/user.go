package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// CreateUser inserts the user together with a zeroed progress row.
func (s *Store) CreateUser(ctx context.Context, id, name string, now time.Time) (User, error) {
	u := User{ID: id, Name: name, CreatedAt: now.UTC()}
	err := s.InTx(ctx, func(r *Repo) error {
		if _, err := r.GetUser(ctx, id); err == nil {
			return fmt.Errorf("user %s: %w", id, ErrExists)
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		return r.insertUser(ctx, u)
	})
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// DeleteUser removes the user and every row that belongs to them.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.InTx(ctx, func(r *Repo) error {
		for _, table := range []string{attemptsTableName, badgeAwardsTableName, progressTableName} {
			del := r.b.Delete(table).Where(entsql.EQ("user_id", id))
			if _, err := r.exec(ctx, del); err != nil {
				return fmt.Errorf("delete %s for %s: %w", table, id, err)
			}
		}
		res, err := r.exec(ctx, r.b.Delete(usersTableName).Where(entsql.EQ("id", id)))
		if err != nil {
			return fmt.Errorf("delete user %s: %w", id, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil
	})
}

func (r *Repo) insertUser(ctx context.Context, u User) error {
	ins := r.b.Insert(usersTableName).
		Columns("id", "name", "created_at").
		Values(u.ID, u.Name, u.CreatedAt)
	if _, err := r.exec(ctx, ins); err != nil {
		return fmt.Errorf("insert user %s: %w", u.ID, err)
	}

	cols := []string{"user_id"}
	vals := []any{u.ID}
	for _, c := range ProgressColumns[1:] {
		switch c.Name {
		case "last_active":
			continue
		case "average_accuracy":
			cols, vals = append(cols, c.Name), append(vals, 0.0)
		default:
			cols, vals = append(cols, c.Name), append(vals, 0)
		}
	}
	prog := r.b.Insert(progressTableName).Columns(cols...).Values(vals...)
	if _, err := r.exec(ctx, prog); err != nil {
		return fmt.Errorf("insert progress %s: %w", u.ID, err)
	}
	return nil
}

// GetUser returns the user with id, or ErrNotFound.
func (r *Repo) GetUser(ctx context.Context, id string) (User, error) {
	t := r.b.Table(usersTableName)
	sel := r.b.Select(t.C("id"), t.C("name"), t.C("created_at")).
		From(t).
		Where(entsql.EQ(t.C("id"), id))

	var u User
	err := r.queryRow(ctx, sel).Scan(&u.ID, &u.Name, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return User{}, fmt.Errorf("get user %s: %w", id, err)
	}
	return u, nil
}

// ListUsers returns all users, oldest first.
func (r *Repo) ListUsers(ctx context.Context) ([]User, error) {
	t := r.b.Table(usersTableName)
	sel := r.b.Select(t.C("id"), t.C("name"), t.C("created_at")).
		From(t).
		OrderBy(t.C("created_at"), t.C("id"))

	rows, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
