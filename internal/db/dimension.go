package db

import (
	"context"
	"fmt"
)

// these are written by hand since the table name is a parameter

// CreateDimensionValue inserts a value into a dimension table, existing values are left as is.
func (q *Queries) CreateDimensionValue(ctx context.Context, dimension Dimension, name string) error {
	_, err := q.db.ExecContext(
		ctx,
		fmt.Sprintf("insert into %s(name) values (?) on conflict (name) do nothing", dimension.Table()),
		name,
	)
	return err
}

func (q *Queries) GetDimensionValueId(ctx context.Context, dimension Dimension, name string) (int64, error) {
	row := q.db.QueryRowContext(
		ctx,
		fmt.Sprintf("select id from %s where name = ?", dimension.Table()),
		name,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

func (q *Queries) GetDimensionValue(ctx context.Context, dimension Dimension, id int64) (string, error) {
	row := q.db.QueryRowContext(
		ctx,
		fmt.Sprintf("select name from %s where id = ?", dimension.Table()),
		id,
	)
	var name string
	err := row.Scan(&name)
	return name, err
}

func (q *Queries) CountDimensionValues(ctx context.Context, dimension Dimension) (int64, error) {
	row := q.db.QueryRowContext(ctx, fmt.Sprintf("select count(*) from %s", dimension.Table()))
	var count int64
	err := row.Scan(&count)
	return count, err
}
