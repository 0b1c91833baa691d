package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"trail-profile-service/internal/config"
)

func NewPostgres(cfg config.DBConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)

	slog.Info("connected to PostgreSQL", "db", cfg.DBName)

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// runMigrations creates the trail schema, tables, activity catalog and the
// stored procedures the service invokes. Domain rules (uniqueness,
// referential checks, age and phone constraints) live in the procedures;
// the Go layers only relay the error text they raise.
func runMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE SCHEMA IF NOT EXISTS trail`,
		`CREATE TABLE IF NOT EXISTS trail.users (
			user_id SERIAL PRIMARY KEY,
			username VARCHAR(50) UNIQUE NOT NULL,
			email VARCHAR(255) UNIQUE,
			phone_number VARCHAR(20),
			location VARCHAR(100),
			date_of_birth DATE,
			created_at TIMESTAMP DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS trail.activities (
			activity_id INTEGER PRIMARY KEY,
			name VARCHAR(50) UNIQUE NOT NULL
		)`,
		`INSERT INTO trail.activities (activity_id, name)
			VALUES (1, 'Running'), (2, 'Cycling'), (3, 'Hiking')
			ON CONFLICT (activity_id) DO NOTHING`,
		`CREATE TABLE IF NOT EXISTS trail.user_activities (
			user_id INTEGER NOT NULL REFERENCES trail.users(user_id) ON DELETE CASCADE,
			activity_id INTEGER NOT NULL REFERENCES trail.activities(activity_id),
			UNIQUE (user_id, activity_id)
		)`,
		`CREATE OR REPLACE FUNCTION trail.create_user(
			p_username VARCHAR, p_email VARCHAR, p_phone_number VARCHAR,
			p_location VARCHAR, p_date_of_birth DATE
		) RETURNS VOID AS $$
		BEGIN
			IF EXISTS (SELECT 1 FROM trail.users WHERE username = p_username) THEN
				RAISE EXCEPTION 'Username already exists';
			END IF;
			IF p_email IS NOT NULL AND EXISTS (SELECT 1 FROM trail.users WHERE email = p_email) THEN
				RAISE EXCEPTION 'Email already exists';
			END IF;
			IF p_phone_number IS NOT NULL AND left(p_phone_number, 1) <> '+' THEN
				RAISE EXCEPTION 'Invalid phone_number format';
			END IF;
			IF p_date_of_birth IS NOT NULL AND p_date_of_birth > CURRENT_DATE - INTERVAL '13 years' THEN
				RAISE EXCEPTION 'Invalid date_of_birth';
			END IF;
			INSERT INTO trail.users (username, email, phone_number, location, date_of_birth)
			VALUES (p_username, p_email, p_phone_number, p_location, p_date_of_birth);
		END;
		$$ LANGUAGE plpgsql`,
		`CREATE OR REPLACE FUNCTION trail.read_user(p_user_id INTEGER)
		RETURNS SETOF trail.users AS $$
		BEGIN
			IF NOT EXISTS (SELECT 1 FROM trail.users WHERE user_id = p_user_id) THEN
				RAISE EXCEPTION 'User not found';
			END IF;
			RETURN QUERY SELECT * FROM trail.users WHERE user_id = p_user_id;
		END;
		$$ LANGUAGE plpgsql`,
		`CREATE OR REPLACE FUNCTION trail.update_user(
			p_user_id INTEGER, p_username VARCHAR, p_email VARCHAR,
			p_phone_number VARCHAR, p_location VARCHAR, p_date_of_birth DATE
		) RETURNS VOID AS $$
		BEGIN
			IF NOT EXISTS (SELECT 1 FROM trail.users WHERE user_id = p_user_id) THEN
				RAISE EXCEPTION 'User not found';
			END IF;
			IF p_username IS NOT NULL AND EXISTS (
				SELECT 1 FROM trail.users WHERE username = p_username AND user_id <> p_user_id
			) THEN
				RAISE EXCEPTION 'Username already exists';
			END IF;
			IF p_email IS NOT NULL AND EXISTS (
				SELECT 1 FROM trail.users WHERE email = p_email AND user_id <> p_user_id
			) THEN
				RAISE EXCEPTION 'Email already exists';
			END IF;
			IF p_phone_number IS NOT NULL AND left(p_phone_number, 1) <> '+' THEN
				RAISE EXCEPTION 'Invalid phone_number format';
			END IF;
			IF p_date_of_birth IS NOT NULL AND p_date_of_birth > CURRENT_DATE - INTERVAL '13 years' THEN
				RAISE EXCEPTION 'Invalid date_of_birth';
			END IF;
			UPDATE trail.users SET
				username = COALESCE(p_username, username),
				email = COALESCE(p_email, email),
				phone_number = COALESCE(p_phone_number, phone_number),
				location = COALESCE(p_location, location),
				date_of_birth = COALESCE(p_date_of_birth, date_of_birth)
			WHERE user_id = p_user_id;
		END;
		$$ LANGUAGE plpgsql`,
		`CREATE OR REPLACE FUNCTION trail.delete_user(p_user_id INTEGER)
		RETURNS VOID AS $$
		BEGIN
			IF NOT EXISTS (SELECT 1 FROM trail.users WHERE user_id = p_user_id) THEN
				RAISE EXCEPTION 'User not found';
			END IF;
			DELETE FROM trail.users WHERE user_id = p_user_id;
		END;
		$$ LANGUAGE plpgsql`,
		`CREATE OR REPLACE FUNCTION trail.add_user_activity(
			p_user_id INTEGER, p_activity_id INTEGER
		) RETURNS VOID AS $$
		BEGIN
			IF NOT EXISTS (SELECT 1 FROM trail.users WHERE user_id = p_user_id) THEN
				RAISE EXCEPTION 'User not found';
			END IF;
			IF NOT EXISTS (SELECT 1 FROM trail.activities WHERE activity_id = p_activity_id) THEN
				RAISE EXCEPTION 'Activity not found';
			END IF;
			IF EXISTS (
				SELECT 1 FROM trail.user_activities
				WHERE user_id = p_user_id AND activity_id = p_activity_id
			) THEN
				RAISE EXCEPTION 'Activity already exists for this user';
			END IF;
			INSERT INTO trail.user_activities (user_id, activity_id)
			VALUES (p_user_id, p_activity_id);
		END;
		$$ LANGUAGE plpgsql`,
		`CREATE OR REPLACE FUNCTION trail.update_user_activity(
			p_user_id INTEGER, p_new_activity_id INTEGER, p_old_activity_id INTEGER
		) RETURNS VOID AS $$
		BEGIN
			IF NOT EXISTS (SELECT 1 FROM trail.users WHERE user_id = p_user_id) THEN
				RAISE EXCEPTION 'User not found';
			END IF;
			IF NOT EXISTS (SELECT 1 FROM trail.activities WHERE activity_id = p_new_activity_id) THEN
				RAISE EXCEPTION 'New activity not found';
			END IF;
			IF NOT EXISTS (
				SELECT 1 FROM trail.user_activities
				WHERE user_id = p_user_id AND activity_id = p_old_activity_id
			) THEN
				RAISE EXCEPTION 'Old activity not found for this user';
			END IF;
			UPDATE trail.user_activities SET activity_id = p_new_activity_id
			WHERE user_id = p_user_id AND activity_id = p_old_activity_id;
		END;
		$$ LANGUAGE plpgsql`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	slog.Info("database migrations completed")
	return nil
}
