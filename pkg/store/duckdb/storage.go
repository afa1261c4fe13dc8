package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const RegionsTableSchema = `
	CREATE TABLE IF NOT EXISTS regions (
		id VARCHAR PRIMARY KEY,
		name VARCHAR NOT NULL,
		local_name VARCHAR,
		lat DOUBLE,
		lon DOUBLE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
`
const SnapshotMetricsTableSchema = `
	CREATE TABLE IF NOT EXISTS snapshot_metrics (
		region_id VARCHAR NOT NULL,
		year INTEGER NOT NULL,
		family VARCHAR NOT NULL,
		grp VARCHAR NOT NULL,
		parent VARCHAR NOT NULL DEFAULT '',
		item VARCHAR NOT NULL,
		seq INTEGER NOT NULL,
		count BIGINT,
		area DOUBLE,
		amount DOUBLE,
		percentage DOUBLE
	);
`

var bootQueries = []string{
	RegionsTableSchema,
	SnapshotMetricsTableSchema,
}

type Settings struct {
	// DbPath is the database file, or ":memory:"
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}
