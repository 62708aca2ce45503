package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/itsnaaur/OpenLine/internal/models"
	"github.com/itsnaaur/OpenLine/internal/repository"
)

type ReportRepo struct{ db *pgxpool.Pool }

func NewReportRepo(db *pgxpool.Pool) *ReportRepo { return &ReportRepo{db: db} }

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// -----------------------------------------------------------------------------
// Create: report + seed message + evidence rows in one transaction
// -----------------------------------------------------------------------------
func (r *ReportRepo) Create(ctx context.Context, rep *models.Report, seedText string, evidence []models.Evidence) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	err = tx.QueryRow(ctx, `
		INSERT INTO reports (access_code, subject, category, urgency, description, status, created_at, last_updated)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$7)
		RETURNING id, created_at, last_updated
	`,
		rep.AccessCode, rep.Subject, rep.Category, rep.Urgency, rep.Description, models.StatusNew, now,
	).Scan(&rep.ID, &rep.CreatedAt, &rep.LastUpdated)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repository.ErrCodeTaken
		}
		return err
	}
	rep.Status = models.StatusNew

	var seed models.Message
	err = tx.QueryRow(ctx, `
		INSERT INTO messages (report_id, sender, text)
		VALUES ($1,$2,$3)
		RETURNING seq, report_id, sender, text, created_at
	`, rep.ID, models.SenderReporter, seedText).
		Scan(&seed.Seq, &seed.ReportID, &seed.Sender, &seed.Text, &seed.CreatedAt)
	if err != nil {
		return err
	}
	rep.Messages = []models.Message{seed}

	for i := range evidence {
		e := &evidence[i]
		e.ReportID = rep.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO evidence (id, report_id, object_key, file_name, content_type, size_bytes)
			VALUES ($1,$2,$3,$4,$5,$6)
			RETURNING created_at
		`, e.ID, e.ReportID, e.ObjectKey, e.FileName, e.ContentType, e.Size).Scan(&e.CreatedAt)
		if err != nil {
			return err
		}
	}
	rep.Evidence = evidence

	return tx.Commit(ctx)
}

// -----------------------------------------------------------------------------
// Reads
// -----------------------------------------------------------------------------
func (r *ReportRepo) Get(ctx context.Context, id string) (*models.Report, error) {
	return r.getWhere(ctx, "r.id = $1", id)
}

func (r *ReportRepo) GetByAccessCode(ctx context.Context, code string) (*models.Report, error) {
	return r.getWhere(ctx, "r.access_code = $1", code)
}

func (r *ReportRepo) getWhere(ctx context.Context, cond string, arg any) (*models.Report, error) {
	var rep models.Report
	var advJSON []byte
	err := r.db.QueryRow(ctx, `
		SELECT r.id, r.access_code, r.subject, r.category, r.urgency, r.description,
			r.status, r.advisory, r.created_at, r.last_updated
		FROM reports r
		WHERE `+cond, arg).Scan(
		&rep.ID, &rep.AccessCode, &rep.Subject, &rep.Category, &rep.Urgency,
		&rep.Description, &rep.Status, &advJSON, &rep.CreatedAt, &rep.LastUpdated,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if len(advJSON) > 0 {
		var adv models.Advisory
		if err := json.Unmarshal(advJSON, &adv); err != nil {
			return nil, err
		}
		rep.Advisory = &adv
	}

	// load thread in insertion order
	rows, err := r.db.Query(ctx, `
		SELECT seq, report_id, sender, text, created_at
		FROM messages
		WHERE report_id = $1
		ORDER BY seq ASC
	`, rep.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.Seq, &m.ReportID, &m.Sender, &m.Text, &m.CreatedAt); err != nil {
			return nil, err
		}
		rep.Messages = append(rep.Messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	erows, err := r.db.Query(ctx, `
		SELECT id, report_id, object_key, file_name, content_type, size_bytes, created_at
		FROM evidence
		WHERE report_id = $1
		ORDER BY created_at ASC
	`, rep.ID)
	if err != nil {
		return nil, err
	}
	defer erows.Close()
	for erows.Next() {
		var e models.Evidence
		if err := erows.Scan(&e.ID, &e.ReportID, &e.ObjectKey, &e.FileName, &e.ContentType, &e.Size, &e.CreatedAt); err != nil {
			return nil, err
		}
		rep.Evidence = append(rep.Evidence, e)
	}
	return &rep, erows.Err()
}

// -----------------------------------------------------------------------------
// Listing with filters + pagination + sort (admin dashboard)
// -----------------------------------------------------------------------------
func (r *ReportRepo) List(ctx context.Context, f repository.ReportFilter) ([]models.Report, int, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	whereSQL, args := buildReportWhere(f)
	sortCol := sanitizeSort(f.Sort, "last_updated")
	sortOrd := sanitizeOrder(f.Order, "desc")

	sql := fmt.Sprintf(`
		SELECT r.id, r.access_code, r.subject, r.category, r.urgency, r.description,
			r.status, r.created_at, r.last_updated,
			(SELECT COUNT(*) FROM messages m WHERE m.report_id = r.id)
		FROM reports r
		%s
		ORDER BY r.%s %s
		LIMIT $%d OFFSET $%d
	`, whereSQL, sortCol, sortOrd, len(args)+1, len(args)+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.Report
	for rows.Next() {
		var rep models.Report
		var msgCount int
		if err := rows.Scan(
			&rep.ID, &rep.AccessCode, &rep.Subject, &rep.Category, &rep.Urgency,
			&rep.Description, &rep.Status, &rep.CreatedAt, &rep.LastUpdated, &msgCount,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	countSQL := `SELECT COUNT(*) FROM reports r ` + whereSQL
	var total int
	if err := r.db.QueryRow(ctx, countSQL, args[:len(args)-2]...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// -----------------------------------------------------------------------------
// Mutations
// -----------------------------------------------------------------------------

// AppendMessage is a single INSERT plus a last_updated bump, wrapped in a
// transaction. Two racing appends both land; ordering is by seq.
func (r *ReportRepo) AppendMessage(ctx context.Context, reportID string, sender models.Sender, text string) (*models.Message, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var m models.Message
	err = tx.QueryRow(ctx, `
		INSERT INTO messages (report_id, sender, text)
		VALUES ($1,$2,$3)
		RETURNING seq, report_id, sender, text, created_at
	`, reportID, sender, text).
		Scan(&m.Seq, &m.ReportID, &m.Sender, &m.Text, &m.CreatedAt)
	if err != nil {
		// an unknown report trips the FK constraint on the insert
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return nil, pgx.ErrNoRows
		}
		return nil, err
	}

	ct, err := tx.Exec(ctx, `
		UPDATE reports SET last_updated = GREATEST(last_updated, $1) WHERE id = $2
	`, m.CreatedAt, reportID)
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, pgx.ErrNoRows
	}
	return &m, tx.Commit(ctx)
}

func (r *ReportRepo) UpdateStatus(ctx context.Context, reportID string, status models.Status) error {
	ct, err := r.db.Exec(ctx, `
		UPDATE reports SET status = $1, last_updated = NOW() WHERE id = $2
	`, status, reportID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ReportRepo) SaveAdvisory(ctx context.Context, reportID string, adv *models.Advisory) error {
	b, err := json.Marshal(adv)
	if err != nil {
		return err
	}
	ct, err := r.db.Exec(ctx, `
		UPDATE reports SET advisory = $1, last_updated = NOW() WHERE id = $2
	`, b, reportID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// AcceptOverride commits the label change, the stored advisory, and the
// explanatory admin message as one unit.
func (r *ReportRepo) AcceptOverride(ctx context.Context, reportID string, field repository.OverrideField, newValue string, adv *models.Advisory, messageText string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	b, err := json.Marshal(adv)
	if err != nil {
		return err
	}

	var col string
	switch field {
	case repository.FieldCategory:
		col = "category"
	case repository.FieldUrgency:
		col = "urgency"
	default:
		return fmt.Errorf("postgres: unknown override field %q", field)
	}

	ct, err := tx.Exec(ctx, `
		UPDATE reports SET `+col+` = $1, advisory = $2, last_updated = NOW() WHERE id = $3
	`, newValue, b, reportID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO messages (report_id, sender, text)
		VALUES ($1,$2,$3)
	`, reportID, models.SenderAdmin, messageText)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// -----------------------------------------------------------------------------
// Dashboard counters
// -----------------------------------------------------------------------------
func (r *ReportRepo) Summary(ctx context.Context) (*repository.Summary, error) {
	var s repository.Summary
	err := r.db.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status <> 'Resolved'),
			COUNT(*) FILTER (WHERE status = 'Resolved' AND last_updated >= NOW() - INTERVAL '7 days'),
			COUNT(*) FILTER (WHERE status <> 'Resolved' AND urgency = 'High'),
			COUNT(*) FILTER (WHERE status = 'New'),
			COUNT(*)
		FROM reports
	`).Scan(&s.Open, &s.Resolved7d, &s.HighOpen, &s.NewCount, &s.Total)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// buildReportWhere composes WHERE clause and args for the list filters.
func buildReportWhere(f repository.ReportFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if s := strings.TrimSpace(f.Q); s != "" {
		p := "%" + s + "%"
		args = append(args, p, p)
		clauses = append(clauses, "(r.subject ILIKE $"+itoa(len(args)-1)+" OR r.description ILIKE $"+itoa(len(args))+")")
	}
	if s := strings.TrimSpace(f.Status); s != "" {
		args = append(args, s)
		clauses = append(clauses, "r.status = $"+itoa(len(args)))
	}
	if c := strings.TrimSpace(f.Category); c != "" {
		args = append(args, c)
		clauses = append(clauses, "r.category = $"+itoa(len(args)))
	}
	if u := strings.TrimSpace(f.Urgency); u != "" {
		args = append(args, u)
		clauses = append(clauses, "r.urgency = $"+itoa(len(args)))
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

func sanitizeSort(s, def string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "created_at", "last_updated", "urgency", "status":
		return strings.ToLower(strings.TrimSpace(s))
	default:
		return def
	}
}

func sanitizeOrder(o, def string) string {
	switch strings.ToLower(strings.TrimSpace(o)) {
	case "asc", "desc":
		return strings.ToLower(strings.TrimSpace(o))
	default:
		return def
	}
}

func itoa(i int) string { return strconv.Itoa(i) }
