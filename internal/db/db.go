package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"logbook-formatter/internal/airport"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

func Ping(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}

// FetchAirports loads the airport reference table. It is read once before a
// batch run; the resulting map backs the airport directory for the whole run.
func FetchAirports(ctx context.Context, db *sql.DB) (map[string]airport.Info, error) {
	q := `SELECT iata, COALESCE(name, iata), tz, lat, lon
          FROM airports
          WHERE tz IS NOT NULL AND lat IS NOT NULL AND lon IS NOT NULL`
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query airports: %w", err)
	}
	defer rows.Close()

	m := make(map[string]airport.Info)
	for rows.Next() {
		var info airport.Info
		if err := rows.Scan(&info.Code, &info.Name, &info.Timezone, &info.Lat, &info.Lon); err != nil {
			return nil, err
		}
		m[info.Code] = info
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(m) == 0 {
		return nil, fmt.Errorf("airports table is empty")
	}
	return m, nil
}
