package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const applicationColumns = `id, personal_info_id, job_title, company_name, job_description,
	job_requirements, cv_file_path, cover_letter_file_path, cv_download_url,
	cover_letter_download_url, matched_projects, application_date, status, notes,
	created_at, updated_at`

// ApplicationFilter narrows ListApplications results. Zero values mean no
// filtering on that dimension.
type ApplicationFilter struct {
	PersonalInfoID int
	Status         string
	Search         string // case-insensitive substring over title and company
}

// CreateApplication inserts a new application record.
func (db *DB) CreateApplication(ctx context.Context, app *JobApplication) (*JobApplication, error) {
	if app.Status == "" {
		app.Status = StatusApplied
	}
	if !ValidStatus(app.Status) {
		return nil, fmt.Errorf("invalid application status: %q", app.Status)
	}

	row := db.pool.QueryRow(ctx,
		`INSERT INTO job_applications (personal_info_id, job_title, company_name,
			job_description, job_requirements, cv_file_path, cover_letter_file_path,
			cv_download_url, cover_letter_download_url, matched_projects, status, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING `+applicationColumns,
		app.PersonalInfoID, app.JobTitle, app.CompanyName, app.JobDescription,
		app.JobRequirements, app.CVFilePath, app.CoverLetterFilePath,
		app.CVDownloadURL, app.CoverLetterDownloadURL, app.MatchedProjects,
		app.Status, app.Notes,
	)

	created, err := scanApplication(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	return created, nil
}

// GetApplication retrieves an application by id. Returns nil when absent.
func (db *DB) GetApplication(ctx context.Context, id int) (*JobApplication, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM job_applications WHERE id = $1`, id)

	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return app, nil
}

// ListApplications returns applications matching the filter, newest first.
func (db *DB) ListApplications(ctx context.Context, filter ApplicationFilter) ([]*JobApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM job_applications WHERE 1=1`
	var args []any

	if filter.PersonalInfoID != 0 {
		args = append(args, filter.PersonalInfoID)
		query += fmt.Sprintf(` AND personal_info_id = $%d`, len(args))
	}
	if filter.Status != "" {
		if !ValidStatus(filter.Status) {
			return nil, fmt.Errorf("invalid application status: %q", filter.Status)
		}
		args = append(args, filter.Status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(` AND (job_title ILIKE $%d OR company_name ILIKE $%d)`,
			len(args), len(args))
	}
	query += ` ORDER BY application_date DESC`

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var out []*JobApplication
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		out = append(out, app)
	}
	return out, rows.Err()
}

// UpdateApplication replaces an application's mutable fields. Returns nil
// when absent.
func (db *DB) UpdateApplication(ctx context.Context, id int, app *JobApplication) (*JobApplication, error) {
	if app.Status != "" && !ValidStatus(app.Status) {
		return nil, fmt.Errorf("invalid application status: %q", app.Status)
	}

	row := db.pool.QueryRow(ctx,
		`UPDATE job_applications
		 SET job_title = $1, company_name = $2, job_description = $3,
		     job_requirements = $4, cv_file_path = $5, cover_letter_file_path = $6,
		     cv_download_url = $7, cover_letter_download_url = $8,
		     matched_projects = $9, status = $10, notes = $11, updated_at = NOW()
		 WHERE id = $12
		 RETURNING `+applicationColumns,
		app.JobTitle, app.CompanyName, app.JobDescription, app.JobRequirements,
		app.CVFilePath, app.CoverLetterFilePath, app.CVDownloadURL,
		app.CoverLetterDownloadURL, app.MatchedProjects, app.Status, app.Notes, id,
	)

	updated, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update application: %w", err)
	}
	return updated, nil
}

// DeleteApplication removes an application. Reports whether a row existed.
func (db *DB) DeleteApplication(ctx context.Context, id int) (bool, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM job_applications WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete application: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanApplication(row pgx.Row) (*JobApplication, error) {
	var app JobApplication
	err := row.Scan(&app.ID, &app.PersonalInfoID, &app.JobTitle, &app.CompanyName,
		&app.JobDescription, &app.JobRequirements, &app.CVFilePath,
		&app.CoverLetterFilePath, &app.CVDownloadURL, &app.CoverLetterDownloadURL,
		&app.MatchedProjects, &app.ApplicationDate, &app.Status, &app.Notes,
		&app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &app, nil
}
