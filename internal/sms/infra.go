package sms

import (
	"context"
	"database/sql"
	"errors"
)

type directory struct {
	db *sql.DB
}

func NewDirectory(db *sql.DB) Directory {
	return &directory{db: db}
}

func (d *directory) ListRelievers(ctx context.Context) ([]Reliever, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, full_name, contact
		FROM reliever_request_reliever_line
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Reliever
	for rows.Next() {
		var r Reliever
		if err := rows.Scan(&r.ID, &r.Name, &r.Contact); err != nil {
			return nil, err
		}
		out = append(out, r)
	}

	return out, rows.Err()
}

func (d *directory) GetHeadAdmin(ctx context.Context) (Head, error) {
	var h Head
	err := d.db.QueryRowContext(ctx, `
		SELECT head_name, contact_number
		FROM head_admin
		ORDER BY id ASC
		LIMIT 1
	`).Scan(&h.Name, &h.Contact)
	if errors.Is(err, sql.ErrNoRows) {
		return Head{}, ErrNoHeadContact
	}
	if err != nil {
		return Head{}, err
	}

	return h, nil
}
