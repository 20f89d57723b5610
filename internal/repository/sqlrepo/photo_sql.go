package sqlrepo

import (
	"context"
	"database/sql"
	"fmt"

	"photoapp/internal/config"
	"photoapp/internal/model"
	"photoapp/internal/repository"
)

// PhotoSQL is a database/sql implementation of repository.PhotoRepository.
// It uses parameterized queries and contains no business logic.
// The table name is trusted configuration (validated by config.AppConfig.Validate).
type PhotoSQL struct {
	db      *sql.DB
	insertQ string
	selectQ string
}

// NewPhotoSQL creates a PhotoSQL repository for the given driver and table.
func NewPhotoSQL(db *sql.DB, driver, table string) *PhotoSQL {
	p1, p2 := "$1", "$2"
	if driver == config.DriverSQLite {
		p1, p2 = "?", "?"
	}
	return &PhotoSQL{
		db:      db,
		insertQ: fmt.Sprintf(`INSERT INTO %s (url, caption) VALUES (%s, %s)`, table, p1, p2),
		selectQ: fmt.Sprintf(`SELECT url, caption FROM %s`, table),
	}
}

var _ repository.PhotoRepository = (*PhotoSQL)(nil)

// Create inserts a photo row. Zero affected rows is reported as repository.ErrNoRowsAffected.
func (r *PhotoSQL) Create(ctx context.Context, photo model.Photo) error {
	res, err := r.db.ExecContext(ctx, r.insertQ, photo.URL, photo.Caption)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNoRowsAffected
	}
	return nil
}

// List returns all photo rows in the table's natural order.
// Only url and caption are read; no other column is required.
func (r *PhotoSQL) List(ctx context.Context) ([]model.Photo, error) {
	rows, err := r.db.QueryContext(ctx, r.selectQ)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Photo, 0)
	for rows.Next() {
		var p model.Photo
		if err := rows.Scan(&p.URL, &p.Caption); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
