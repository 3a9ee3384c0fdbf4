package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/sanmateo-reports/internal/domain/entity"
	"github.com/ignatzorin/sanmateo-reports/internal/domain/repository"
	"github.com/ignatzorin/sanmateo-reports/internal/domain/valueobject"
	"github.com/ignatzorin/sanmateo-reports/internal/pkg/apperror"
)

const uniqueViolation = "23505"

type reportRow struct {
	ID             string         `db:"id"`
	Category       string         `db:"category"`
	Description    string         `db:"description"`
	Barangay       string         `db:"barangay"`
	StreetAddress  string         `db:"street_address"`
	Latitude       float64        `db:"latitude"`
	Longitude      float64        `db:"longitude"`
	Status         string         `db:"status"`
	Priority       string         `db:"priority"`
	Department     string         `db:"department"`
	AssignedTo     sql.NullString `db:"assigned_to"`
	ReporterName   string         `db:"reporter_name"`
	ReporterPhone  string         `db:"reporter_phone"`
	ReporterEmail  string         `db:"reporter_email"`
	Attachments    pq.StringArray `db:"attachments"`
	IdempotencyKey sql.NullString `db:"idempotency_key"`
	SubmittedAt    time.Time      `db:"submitted_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

type updateRow struct {
	ReportID  string    `db:"report_id"`
	Position  int       `db:"position"`
	Status    string    `db:"status"`
	Message   string    `db:"message"`
	CreatedAt time.Time `db:"created_at"`
}

const reportColumns = `id, category, description, barangay, street_address, latitude, longitude,
	status, priority, department, assigned_to, reporter_name, reporter_phone, reporter_email,
	attachments, idempotency_key, submitted_at, updated_at`

// PostgresReportRepository хранит отчёты в PostgreSQL. История — в report_updates.
type PostgresReportRepository struct {
	db *sqlx.DB
}

func NewPostgresReportRepository(db *sqlx.DB) *PostgresReportRepository {
	return &PostgresReportRepository{db: db}
}

func (r *PostgresReportRepository) Create(ctx context.Context, report *entity.Report) error {
	return withTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		row := toRow(report)
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO reports (`+reportColumns+`)
			VALUES (:id, :category, :description, :barangay, :street_address, :latitude, :longitude,
				:status, :priority, :department, :assigned_to, :reporter_name, :reporter_phone, :reporter_email,
				:attachments, :idempotency_key, :submitted_at, :updated_at)
		`, row)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
				if pqErr.Constraint == "reports_pkey" {
					return apperror.ErrDuplicateReportID
				}
				return apperror.Wrap(err, apperror.ErrCodeConflict, "idempotency key already used")
			}
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать отчёт")
		}

		return insertUpdates(ctx, tx, report.ID, report.Timeline, 0)
	})
}

func (r *PostgresReportRepository) FindByID(ctx context.Context, id string) (*entity.Report, error) {
	return r.findOne(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id)
}

func (r *PostgresReportRepository) FindByIdempotencyKey(ctx context.Context, key string) (*entity.Report, error) {
	return r.findOne(ctx, `SELECT `+reportColumns+` FROM reports WHERE idempotency_key = $1`, key)
}

func (r *PostgresReportRepository) findOne(ctx context.Context, query string, arg string) (*entity.Report, error) {
	var row reportRow
	if err := r.db.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrReportNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить отчёт")
	}

	reports, err := r.withTimelines(ctx, []reportRow{row})
	if err != nil {
		return nil, err
	}
	return reports[0], nil
}

func (r *PostgresReportRepository) List(ctx context.Context, filter repository.ReportFilter) ([]*entity.Report, int, error) {
	where, args := buildWhere(filter)

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM reports`+where, args...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать отчёты")
	}

	query := `SELECT ` + reportColumns + ` FROM reports` + where + ` ORDER BY submitted_at DESC, id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	var rows []reportRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить список отчётов")
	}

	reports, err := r.withTimelines(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

// Update сохраняет изменяемые поля и дописывает новые записи истории.
func (r *PostgresReportRepository) Update(ctx context.Context, report *entity.Report) error {
	return withTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		// Блокировка строки сериализует параллельные обновления одного отчёта.
		var locked string
		if err := tx.GetContext(ctx, &locked, `SELECT id FROM reports WHERE id = $1 FOR UPDATE`, report.ID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperror.ErrReportNotFound
			}
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось заблокировать отчёт")
		}

		var updates []updateRow
		if err := tx.SelectContext(ctx, &updates, `
			SELECT report_id, position, status, message, created_at
			FROM report_updates
			WHERE report_id = $1
			ORDER BY position
		`, report.ID); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось прочитать историю отчёта")
		}
		if !report.ExtendsTimeline(toTimeline(updates)) {
			return apperror.ErrStaleReport
		}
		stored := len(updates)

		res, err := tx.ExecContext(ctx, `
			UPDATE reports
			SET status = $2, priority = $3, assigned_to = $4, attachments = $5, updated_at = $6
			WHERE id = $1
		`,
			report.ID,
			string(report.Status),
			string(report.Priority),
			nullString(report.AssignedTo),
			pq.StringArray(report.Attachments),
			report.UpdatedAt,
		)
		if err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить отчёт")
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return apperror.ErrReportNotFound
		}

		return insertUpdates(ctx, tx, report.ID, report.Timeline[stored:], stored)
	})
}

func (r *PostgresReportRepository) Stats(ctx context.Context) (*entity.Stats, error) {
	stats := &entity.Stats{
		ByCategory: make(map[valueobject.Category]int),
		ByBarangay: make(map[string]int),
	}

	var byStatus []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &byStatus, `SELECT status, COUNT(*) AS count FROM reports GROUP BY status`); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить статистику по статусам")
	}
	for _, s := range byStatus {
		stats.Total += s.Count
		switch valueobject.ReportStatus(s.Status) {
		case valueobject.ReportStatusSubmitted, valueobject.ReportStatusReviewed:
			stats.Pending += s.Count
		case valueobject.ReportStatusAssigned, valueobject.ReportStatusInProgress:
			stats.InProgress += s.Count
		case valueobject.ReportStatusResolved:
			stats.Resolved += s.Count
		case valueobject.ReportStatusRejected:
			stats.Rejected += s.Count
		}
	}

	var byCategory []struct {
		Category string `db:"category"`
		Count    int    `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &byCategory, `SELECT category, COUNT(*) AS count FROM reports GROUP BY category`); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить статистику по категориям")
	}
	for _, c := range byCategory {
		stats.ByCategory[valueobject.Category(c.Category)] = c.Count
	}

	var byBarangay []struct {
		Barangay string `db:"barangay"`
		Count    int    `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &byBarangay, `SELECT barangay, COUNT(*) AS count FROM reports GROUP BY barangay`); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить статистику по барангаям")
	}
	for _, b := range byBarangay {
		stats.ByBarangay[b.Barangay] = b.Count
	}

	return stats, nil
}

// Ping проверяет соединение для /health.
func (r *PostgresReportRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *PostgresReportRepository) withTimelines(ctx context.Context, rows []reportRow) ([]*entity.Report, error) {
	if len(rows) == 0 {
		return []*entity.Report{}, nil
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}

	var updates []updateRow
	if err := r.db.SelectContext(ctx, &updates, `
		SELECT report_id, position, status, message, created_at
		FROM report_updates
		WHERE report_id = ANY($1)
		ORDER BY report_id, position
	`, pq.Array(ids)); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить историю отчётов")
	}

	timelines := make(map[string][]entity.TimelineEntry, len(rows))
	for _, u := range updates {
		timelines[u.ReportID] = append(timelines[u.ReportID], u.entry())
	}

	out := make([]*entity.Report, len(rows))
	for i, row := range rows {
		out[i] = fromRow(row, timelines[row.ID])
	}
	return out, nil
}

func (u updateRow) entry() entity.TimelineEntry {
	return entity.TimelineEntry{
		Date:    u.CreatedAt,
		Status:  valueobject.ReportStatus(u.Status),
		Message: u.Message,
	}
}

func toTimeline(updates []updateRow) []entity.TimelineEntry {
	out := make([]entity.TimelineEntry, 0, len(updates))
	for _, u := range updates {
		out = append(out, u.entry())
	}
	return out
}

func insertUpdates(ctx context.Context, tx *sqlx.Tx, reportID string, entries []entity.TimelineEntry, offset int) error {
	batch := newBatchInserter(tx, `INSERT INTO report_updates (report_id, position, status, message, created_at)`, 5, defaultBatchSize)
	for i, entry := range entries {
		if err := batch.Add(ctx, reportID, offset+i, string(entry.Status), entry.Message, entry.Date); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить запись истории")
		}
	}
	if err := batch.Flush(ctx); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить запись истории")
	}
	return nil
}

func buildWhere(filter repository.ReportFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if filter.Status != "" {
		if valueobject.ReportStatus(filter.Status) == valueobject.ReportStatusPending {
			args = append(args, pq.Array([]string{
				string(valueobject.ReportStatusSubmitted),
				string(valueobject.ReportStatusReviewed),
			}))
			conds = append(conds, fmt.Sprintf("status = ANY($%d)", len(args)))
		} else {
			args = append(args, filter.Status)
			conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
		}
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Barangay != "" {
		args = append(args, filter.Barangay)
		conds = append(conds, fmt.Sprintf("barangay = $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func toRow(r *entity.Report) reportRow {
	attachments := r.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	return reportRow{
		ID:             r.ID,
		Category:       string(r.Category),
		Description:    r.Description,
		Barangay:       r.Barangay,
		StreetAddress:  r.StreetAddress,
		Latitude:       r.Coordinates.Latitude,
		Longitude:      r.Coordinates.Longitude,
		Status:         string(r.Status),
		Priority:       string(r.Priority),
		Department:     r.Department,
		AssignedTo:     nullString(r.AssignedTo),
		ReporterName:   r.Reporter.Name,
		ReporterPhone:  r.Reporter.Phone,
		ReporterEmail:  r.Reporter.Email,
		Attachments:    attachments,
		IdempotencyKey: sql.NullString{String: r.IdempotencyKey, Valid: r.IdempotencyKey != ""},
		SubmittedAt:    r.SubmittedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func fromRow(row reportRow, timeline []entity.TimelineEntry) *entity.Report {
	report := &entity.Report{
		ID:            row.ID,
		Category:      valueobject.Category(row.Category),
		Description:   row.Description,
		Barangay:      row.Barangay,
		StreetAddress: row.StreetAddress,
		Coordinates:   valueobject.Coordinates{Latitude: row.Latitude, Longitude: row.Longitude},
		Status:        valueobject.ReportStatus(row.Status),
		Priority:      valueobject.Priority(row.Priority),
		Department:    row.Department,
		SubmittedAt:   row.SubmittedAt,
		UpdatedAt:     row.UpdatedAt,
		Timeline:      timeline,
		Attachments:   []string(row.Attachments),
		Reporter: entity.Reporter{
			Name:  row.ReporterName,
			Phone: row.ReporterPhone,
			Email: row.ReporterEmail,
		},
		IdempotencyKey: row.IdempotencyKey.String,
	}
	if row.AssignedTo.Valid {
		assigned := row.AssignedTo.String
		report.AssignedTo = &assigned
	}
	return report
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
