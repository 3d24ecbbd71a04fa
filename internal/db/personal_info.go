package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const personalInfoColumns = `id, first_name, last_name, email, phone, address, city,
	postal_code, title, summary, linkedin, github, skills, experience, education,
	created_at, updated_at`

// CreatePersonalInfo inserts a new personal info record. Email is unique.
func (db *DB) CreatePersonalInfo(ctx context.Context, info *PersonalInfo) (*PersonalInfo, error) {
	skills, experience, education, err := marshalSections(info)
	if err != nil {
		return nil, err
	}

	row := db.pool.QueryRow(ctx,
		`INSERT INTO personal_info (first_name, last_name, email, phone, address, city,
			postal_code, title, summary, linkedin, github, skills, experience, education)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING `+personalInfoColumns,
		info.FirstName, info.LastName, info.Email, info.Phone, info.Address, info.City,
		info.PostalCode, info.Title, info.Summary, info.LinkedIn, info.GitHub,
		skills, experience, education,
	)

	created, err := scanPersonalInfo(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create personal info: %w", err)
	}
	return created, nil
}

// GetPersonalInfo retrieves a record by id. Returns nil when absent.
func (db *DB) GetPersonalInfo(ctx context.Context, id int) (*PersonalInfo, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+personalInfoColumns+` FROM personal_info WHERE id = $1`, id)

	info, err := scanPersonalInfo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get personal info: %w", err)
	}
	return info, nil
}

// GetPersonalInfoByEmail retrieves a record by email. Returns nil when absent.
func (db *DB) GetPersonalInfoByEmail(ctx context.Context, email string) (*PersonalInfo, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+personalInfoColumns+` FROM personal_info WHERE email = $1`, email)

	info, err := scanPersonalInfo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get personal info by email: %w", err)
	}
	return info, nil
}

// ListPersonalInfo returns all records, newest first.
func (db *DB) ListPersonalInfo(ctx context.Context) ([]*PersonalInfo, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+personalInfoColumns+` FROM personal_info ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list personal info: %w", err)
	}
	defer rows.Close()

	var out []*PersonalInfo
	for rows.Next() {
		info, err := scanPersonalInfo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan personal info: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// UpdatePersonalInfo replaces a record's fields. Returns nil when absent.
func (db *DB) UpdatePersonalInfo(ctx context.Context, id int, info *PersonalInfo) (*PersonalInfo, error) {
	skills, experience, education, err := marshalSections(info)
	if err != nil {
		return nil, err
	}

	row := db.pool.QueryRow(ctx,
		`UPDATE personal_info
		 SET first_name = $1, last_name = $2, email = $3, phone = $4, address = $5,
		     city = $6, postal_code = $7, title = $8, summary = $9, linkedin = $10,
		     github = $11, skills = $12, experience = $13, education = $14,
		     updated_at = NOW()
		 WHERE id = $15
		 RETURNING `+personalInfoColumns,
		info.FirstName, info.LastName, info.Email, info.Phone, info.Address, info.City,
		info.PostalCode, info.Title, info.Summary, info.LinkedIn, info.GitHub,
		skills, experience, education, id,
	)

	updated, err := scanPersonalInfo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update personal info: %w", err)
	}
	return updated, nil
}

func marshalSections(info *PersonalInfo) (skills, experience, education []byte, err error) {
	if skills, err = json.Marshal(info.Skills); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal skills: %w", err)
	}
	if experience, err = json.Marshal(info.Experience); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal experience: %w", err)
	}
	if education, err = json.Marshal(info.Education); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal education: %w", err)
	}
	return skills, experience, education, nil
}

func scanPersonalInfo(row pgx.Row) (*PersonalInfo, error) {
	var info PersonalInfo
	var skills, experience, education []byte

	err := row.Scan(&info.ID, &info.FirstName, &info.LastName, &info.Email, &info.Phone,
		&info.Address, &info.City, &info.PostalCode, &info.Title, &info.Summary,
		&info.LinkedIn, &info.GitHub, &skills, &experience, &education,
		&info.CreatedAt, &info.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if len(skills) > 0 {
		if err := json.Unmarshal(skills, &info.Skills); err != nil {
			return nil, fmt.Errorf("failed to unmarshal skills: %w", err)
		}
	}
	if len(experience) > 0 {
		if err := json.Unmarshal(experience, &info.Experience); err != nil {
			return nil, fmt.Errorf("failed to unmarshal experience: %w", err)
		}
	}
	if len(education) > 0 {
		if err := json.Unmarshal(education, &info.Education); err != nil {
			return nil, fmt.Errorf("failed to unmarshal education: %w", err)
		}
	}
	return &info, nil
}
