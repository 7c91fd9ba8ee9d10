package submission

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"fieldcheck/pkg/domain"
	"fieldcheck/pkg/platform/sentinel"
)

// PostgresStore persists submissions in PostgreSQL. Transitions run inside a
// transaction with a row lock, so concurrent reviewer actions on one id
// serialize.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the submissions table when it does not exist yet.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS submissions (
			id UUID PRIMARY KEY,
			building_type TEXT NOT NULL,
			building_color TEXT NOT NULL,
			closest_landmark TEXT NOT NULL,
			email TEXT NOT NULL,
			utility_bill_provided BOOLEAN NOT NULL,
			lives_in_estate BOOLEAN NOT NULL,
			gatekeeper_phone TEXT,
			submitted_at TIMESTAMPTZ NOT NULL,
			status TEXT NOT NULL,
			verified_at TIMESTAMPTZ,
			rejected_at TIMESTAMPTZ,
			rejection_reason TEXT
		)`)
	if err != nil {
		return fmt.Errorf("migrate submissions: %w", err)
	}
	return nil
}

const submissionColumns = `id, building_type, building_color, closest_landmark, email,
	utility_bill_provided, lives_in_estate, gatekeeper_phone, submitted_at,
	status, verified_at, rejected_at, rejection_reason`

func (s *PostgresStore) Create(ctx context.Context, sub Submission) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO submissions (`+submissionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		sub.ID.String(), sub.BuildingType, sub.BuildingColor, sub.ClosestLandmark,
		sub.Email, sub.UtilityBillProvided, sub.LivesInEstate, sub.GatekeeperPhone,
		sub.SubmittedAt, string(sub.Status), sub.VerifiedAt, sub.RejectedAt,
		sub.RejectionReason,
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id domain.SubmissionID) (Submission, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, id.String())
	return scanSubmission(row)
}

func (s *PostgresStore) List(ctx context.Context) ([]Submission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+submissionColumns+` FROM submissions
		ORDER BY submitted_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	subs := []Submission{}
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return subs, nil
}

func (s *PostgresStore) ApplyTransition(ctx context.Context, id domain.SubmissionID, target Status, reason string, now time.Time) (Submission, error) {
	if err := ValidateTarget(target); err != nil {
		return Submission{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Submission{}, fmt.Errorf("begin transition: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `
		SELECT `+submissionColumns+` FROM submissions WHERE id = $1 FOR UPDATE`, id.String())
	current, err := scanSubmission(row)
	if err != nil {
		return Submission{}, err
	}

	updated, err := Transition(current, target, reason, now)
	if err != nil {
		return Submission{}, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE submissions
		SET status = $2, verified_at = $3, rejected_at = $4, rejection_reason = $5
		WHERE id = $1`,
		id.String(), string(updated.Status), updated.VerifiedAt, updated.RejectedAt,
		updated.RejectionReason,
	)
	if err != nil {
		return Submission{}, fmt.Errorf("update submission: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Submission{}, fmt.Errorf("commit transition: %w", err)
	}
	return updated, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (Submission, error) {
	var (
		sub   Submission
		rawID string
	)
	err := row.Scan(
		&rawID, &sub.BuildingType, &sub.BuildingColor, &sub.ClosestLandmark,
		&sub.Email, &sub.UtilityBillProvided, &sub.LivesInEstate, &sub.GatekeeperPhone,
		&sub.SubmittedAt, &sub.Status, &sub.VerifiedAt, &sub.RejectedAt,
		&sub.RejectionReason,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Submission{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Submission{}, fmt.Errorf("scan submission: %w", err)
	}
	id, err := domain.ParseSubmissionID(rawID)
	if err != nil {
		return Submission{}, fmt.Errorf("scan submission id: %w", err)
	}
	sub.ID = id
	return sub, nil
}
