package postgres

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/ds124wfegd/facility-booking/config"

	_ "github.com/lib/pq"
)

// DSN собирает строку подключения; ее же использует LISTEN/NOTIFY слушатель
func DSN(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)
}

func NewPostgresDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to PostgreSQL")
	return db, nil
}

func RunMigrations(db *sql.DB) error {
	// Read migration files and execute them
	// This is a simplified version - you might want to use a proper migration tool
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS facilities (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) UNIQUE NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS bookings (
			id SERIAL PRIMARY KEY,
			facility_id INTEGER REFERENCES facilities(id),
			user_name VARCHAR(255) NOT NULL,
			start_day SMALLINT NOT NULL,
			start_hour SMALLINT NOT NULL,
			start_minute SMALLINT NOT NULL,
			end_day SMALLINT NOT NULL,
			end_hour SMALLINT NOT NULL,
			end_minute SMALLINT NOT NULL,
			status VARCHAR(20) DEFAULT 'pending',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS access_codes (
			id SERIAL PRIMARY KEY,
			booking_id INTEGER UNIQUE REFERENCES bookings(id),
			code VARCHAR(6) NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_bookings_facility_id ON bookings(facility_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_user_name ON bookings(user_name)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_facility_day ON bookings(facility_id, start_day)`,

		// Change feed for the notification fan-out
		`CREATE OR REPLACE FUNCTION notify_booking_change() RETURNS trigger AS $$
		DECLARE
			rec bookings%ROWTYPE;
		BEGIN
			IF TG_OP = 'DELETE' THEN
				rec := OLD;
			ELSE
				rec := NEW;
			END IF;
			PERFORM pg_notify('booking_changes', json_build_object(
				'action', TG_OP,
				'booking_id', rec.id,
				'facility_name', (SELECT name FROM facilities WHERE id = rec.facility_id),
				'start_day', rec.start_day,
				'start_hour', rec.start_hour,
				'start_minute', rec.start_minute,
				'end_day', rec.end_day,
				'end_hour', rec.end_hour,
				'end_minute', rec.end_minute,
				'status', rec.status
			)::text);
			RETURN rec;
		END;
		$$ LANGUAGE plpgsql`,

		`CREATE OR REPLACE TRIGGER bookings_notify_change
			AFTER INSERT OR UPDATE OR DELETE ON bookings
			FOR EACH ROW EXECUTE FUNCTION notify_booking_change()`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute migration: %v", err)
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}
