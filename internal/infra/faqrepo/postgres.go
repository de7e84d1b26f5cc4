package faqrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xreal/faqbase/internal/domain/faq"
)

// PostgresFAQRepository implements faq.FAQRepository using pgx. FAQ rows and
// their tag associations are written in one transaction.
type PostgresFAQRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresFAQRepository constructs the repository.
func NewPostgresFAQRepository(pool *pgxpool.Pool) *PostgresFAQRepository {
	return &PostgresFAQRepository{pool: pool}
}

// EnsureSchema creates the tables the service owns.
func (r *PostgresFAQRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS tags (
			name        TEXT PRIMARY KEY,
			description TEXT NOT NULL DEFAULT '',
			active      BOOLEAN NOT NULL DEFAULT TRUE
		);
		CREATE TABLE IF NOT EXISTS faqs (
			id          BIGSERIAL PRIMARY KEY,
			question    TEXT NOT NULL,
			answer      TEXT NOT NULL,
			instruction TEXT NOT NULL DEFAULT '',
			url         TEXT NOT NULL DEFAULT '',
			active      BOOLEAN NOT NULL DEFAULT TRUE,
			comment     TEXT NOT NULL DEFAULT '',
			timestamp   TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS faq_tags (
			faq_id   BIGINT NOT NULL REFERENCES faqs(id) ON DELETE CASCADE,
			tag_name TEXT NOT NULL REFERENCES tags(name),
			PRIMARY KEY (faq_id, tag_name)
		);
		CREATE INDEX IF NOT EXISTS idx_faqs_question_fold ON faqs (LOWER(TRIM(question)));
	`)
	return err
}

// Save inserts or updates the FAQ and rewrites its tag associations.
func (r *PostgresFAQRepository) Save(ctx context.Context, f *faq.FAQ) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if f.ID == 0 {
		err = tx.QueryRow(ctx, `
			INSERT INTO faqs (question, answer, instruction, url, active, comment, timestamp)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`, f.Question, f.Answer, f.Instruction, f.URL, f.Active, f.Comment, f.Timestamp).Scan(&f.ID)
		if err != nil {
			return err
		}
	} else {
		ct, err := tx.Exec(ctx, `
			UPDATE faqs
			SET question = $2, answer = $3, instruction = $4, url = $5, active = $6, comment = $7, timestamp = $8
			WHERE id = $1
		`, f.ID, f.Question, f.Answer, f.Instruction, f.URL, f.Active, f.Comment, f.Timestamp)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return fmt.Errorf("faq %d does not exist", f.ID)
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM faq_tags WHERE faq_id = $1`, f.ID); err != nil {
		return err
	}
	for _, name := range f.Tags {
		if _, err := tx.Exec(ctx, `
			INSERT INTO faq_tags (faq_id, tag_name) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, f.ID, name); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// FindByID fetches one FAQ with its tags.
func (r *PostgresFAQRepository) FindByID(ctx context.Context, id int64) (faq.FAQ, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, question, answer, instruction, url, active, comment, timestamp
		FROM faqs
		WHERE id = $1
	`, id)
	record, err := scanFAQ(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return faq.FAQ{}, false, nil
	}
	if err != nil {
		return faq.FAQ{}, false, err
	}
	if err := r.attachTags(ctx, []*faq.FAQ{&record}); err != nil {
		return faq.FAQ{}, false, err
	}
	return record, true, nil
}

// FindByQuestionFold fetches by trimmed, case-folded question text.
func (r *PostgresFAQRepository) FindByQuestionFold(ctx context.Context, question string) (faq.FAQ, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, question, answer, instruction, url, active, comment, timestamp
		FROM faqs
		WHERE LOWER(TRIM(question)) = LOWER(TRIM($1))
		LIMIT 1
	`, question)
	record, err := scanFAQ(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return faq.FAQ{}, false, nil
	}
	if err != nil {
		return faq.FAQ{}, false, err
	}
	if err := r.attachTags(ctx, []*faq.FAQ{&record}); err != nil {
		return faq.FAQ{}, false, err
	}
	return record, true, nil
}

// List returns one page of FAQs, optionally filtered by active flag.
func (r *PostgresFAQRepository) List(ctx context.Context, active *bool, page faq.PageRequest) ([]faq.FAQ, int64, error) {
	where := ""
	args := []any{}
	if active != nil {
		where = "WHERE active = $1"
		args = append(args, *active)
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM faqs `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id, question, answer, instruction, url, active, comment, timestamp
		FROM faqs %s
		ORDER BY %s
		LIMIT %d OFFSET %d
	`, where, orderClause(page.Sort), page.Size, page.Offset())
	faqs, err := r.queryFAQs(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return faqs, total, nil
}

// FindByTags returns one page of FAQs carrying at least one of the given
// tags.
func (r *PostgresFAQRepository) FindByTags(ctx context.Context, tags []string, active *bool, page faq.PageRequest) ([]faq.FAQ, int64, error) {
	where := `WHERE f.id IN (SELECT faq_id FROM faq_tags WHERE tag_name = ANY($1))`
	args := []any{tags}
	if active != nil {
		where += " AND f.active = $2"
		args = append(args, *active)
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM faqs f `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT f.id, f.question, f.answer, f.instruction, f.url, f.active, f.comment, f.timestamp
		FROM faqs f %s
		ORDER BY %s
		LIMIT %d OFFSET %d
	`, where, orderClause(page.Sort), page.Size, page.Offset())
	faqs, err := r.queryFAQs(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return faqs, total, nil
}

// Exists reports whether the FAQ row exists.
func (r *PostgresFAQRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM faqs WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// Delete removes the FAQ and reports whether a row was deleted.
func (r *PostgresFAQRepository) Delete(ctx context.Context, id int64) (bool, error) {
	ct, err := r.pool.Exec(ctx, `DELETE FROM faqs WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

// DeleteAll wipes every FAQ and association.
func (r *PostgresFAQRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `TRUNCATE faq_tags, faqs`)
	return err
}

func (r *PostgresFAQRepository) queryFAQs(ctx context.Context, query string, args ...any) ([]faq.FAQ, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var faqs []faq.FAQ
	for rows.Next() {
		record, err := scanFAQ(rows)
		if err != nil {
			return nil, err
		}
		faqs = append(faqs, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	refs := make([]*faq.FAQ, len(faqs))
	for i := range faqs {
		refs[i] = &faqs[i]
	}
	if err := r.attachTags(ctx, refs); err != nil {
		return nil, err
	}
	return faqs, nil
}

// attachTags loads tag names for the given FAQs in one query.
func (r *PostgresFAQRepository) attachTags(ctx context.Context, faqs []*faq.FAQ) error {
	if len(faqs) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(faqs))
	byID := make(map[int64]*faq.FAQ, len(faqs))
	for _, f := range faqs {
		ids = append(ids, f.ID)
		byID[f.ID] = f
		f.Tags = []string{}
	}
	rows, err := r.pool.Query(ctx, `
		SELECT faq_id, tag_name
		FROM faq_tags
		WHERE faq_id = ANY($1)
		ORDER BY tag_name
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return err
		}
		if f, ok := byID[id]; ok {
			f.Tags = append(f.Tags, name)
		}
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFAQ(row rowScanner) (faq.FAQ, error) {
	var record faq.FAQ
	err := row.Scan(&record.ID, &record.Question, &record.Answer, &record.Instruction,
		&record.URL, &record.Active, &record.Comment, &record.Timestamp)
	return record, err
}

// orderClause renders an ORDER BY expression. Sort fields are validated
// upstream against a whitelist, so interpolation is safe here.
func orderClause(sort faq.SortOrder) string {
	field := sort.Field
	if field == "" {
		field = "timestamp"
	}
	dir := "ASC"
	if sort.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf("%s %s", field, dir)
}

var _ faq.FAQRepository = (*PostgresFAQRepository)(nil)

// PostgresTagRepository implements faq.TagRepository using pgx.
type PostgresTagRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTagRepository constructs the repository.
func NewPostgresTagRepository(pool *pgxpool.Pool) *PostgresTagRepository {
	return &PostgresTagRepository{pool: pool}
}

// Save upserts the tag by name.
func (r *PostgresTagRepository) Save(ctx context.Context, tag faq.Tag) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tags (name, description, active)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE
		SET description = EXCLUDED.description, active = EXCLUDED.active
	`, tag.Name, tag.Description, tag.Active)
	return err
}

// FindByName fetches one tag.
func (r *PostgresTagRepository) FindByName(ctx context.Context, name string) (faq.Tag, bool, error) {
	var tag faq.Tag
	err := r.pool.QueryRow(ctx, `
		SELECT name, description, active FROM tags WHERE name = $1
	`, name).Scan(&tag.Name, &tag.Description, &tag.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return faq.Tag{}, false, nil
	}
	if err != nil {
		return faq.Tag{}, false, err
	}
	return tag, true, nil
}

// Exists reports whether the tag exists.
func (r *PostgresTagRepository) Exists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tags WHERE name = $1)`, name).Scan(&exists)
	return exists, err
}

// List returns every tag ordered by name.
func (r *PostgresTagRepository) List(ctx context.Context) ([]faq.Tag, error) {
	return r.queryTags(ctx, `SELECT name, description, active FROM tags ORDER BY name`)
}

// ListActive returns active tags ordered by name.
func (r *PostgresTagRepository) ListActive(ctx context.Context) ([]faq.Tag, error) {
	return r.queryTags(ctx, `SELECT name, description, active FROM tags WHERE active ORDER BY name`)
}

// InUse reports whether any FAQ references the tag.
func (r *PostgresTagRepository) InUse(ctx context.Context, name string) (bool, error) {
	var inUse bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM faq_tags WHERE tag_name = $1)`, name).Scan(&inUse)
	return inUse, err
}

// Delete removes the tag row.
func (r *PostgresTagRepository) Delete(ctx context.Context, name string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM tags WHERE name = $1`, name)
	return err
}

func (r *PostgresTagRepository) queryTags(ctx context.Context, query string) ([]faq.Tag, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tags []faq.Tag
	for rows.Next() {
		var tag faq.Tag
		if err := rows.Scan(&tag.Name, &tag.Description, &tag.Active); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

var _ faq.TagRepository = (*PostgresTagRepository)(nil)
