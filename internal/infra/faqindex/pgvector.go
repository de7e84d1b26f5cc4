package faqindex

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/xreal/faqbase/internal/domain/faq"
)

// PgvectorIndex implements faq.DocumentIndex on a pgvector-enabled Postgres
// table, sharing the primary store's connection pool.
type PgvectorIndex struct {
	pool       *pgxpool.Pool
	dimensions int
}

// NewPgvectorIndex constructs the index and creates its table.
func NewPgvectorIndex(ctx context.Context, pool *pgxpool.Pool, dimensions int) (*PgvectorIndex, error) {
	idx := &PgvectorIndex{pool: pool, dimensions: dimensions}
	if err := idx.ensureTable(ctx); err != nil {
		return nil, err
	}
	return idx, nil
}

func (p *PgvectorIndex) ensureTable(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, fmt.Sprintf(`
		CREATE EXTENSION IF NOT EXISTS vector;
		CREATE TABLE IF NOT EXISTS faq_documents (
			id          TEXT PRIMARY KEY,
			content     TEXT NOT NULL,
			embedding   VECTOR(%d),
			question    TEXT NOT NULL,
			answer      TEXT NOT NULL,
			tags        TEXT[] NOT NULL DEFAULT '{}',
			instruction TEXT NOT NULL DEFAULT '',
			url         TEXT NOT NULL DEFAULT '',
			active      BOOLEAN NOT NULL DEFAULT TRUE,
			timestamp   TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_faq_documents_tags ON faq_documents USING gin (tags);
	`, p.dimensions))
	if err != nil {
		return fmt.Errorf("ensure faq_documents table: %w", err)
	}
	return nil
}

const upsertDocument = `
	INSERT INTO faq_documents (id, content, embedding, question, answer, tags, instruction, url, active, timestamp)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (id) DO UPDATE SET
		content = EXCLUDED.content,
		embedding = EXCLUDED.embedding,
		question = EXCLUDED.question,
		answer = EXCLUDED.answer,
		tags = EXCLUDED.tags,
		instruction = EXCLUDED.instruction,
		url = EXCLUDED.url,
		active = EXCLUDED.active,
		timestamp = EXCLUDED.timestamp
`

// Save upserts one document row.
func (p *PgvectorIndex) Save(ctx context.Context, doc faq.Document) error {
	_, err := p.pool.Exec(ctx, upsertDocument, upsertArgs(doc)...)
	return err
}

// SaveAll upserts the documents in one pipelined batch.
func (p *PgvectorIndex) SaveAll(ctx context.Context, docs []faq.Document) error {
	if len(docs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, doc := range docs {
		batch.Queue(upsertDocument, upsertArgs(doc)...)
	}
	results := p.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range docs {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return results.Close()
}

// DeleteByID removes one document row.
func (p *PgvectorIndex) DeleteByID(ctx context.Context, id string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM faq_documents WHERE id = $1`, id)
	return err
}

// DeleteAll wipes the table.
func (p *PgvectorIndex) DeleteAll(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `TRUNCATE faq_documents`)
	return err
}

// SearchByTags returns documents whose tag array overlaps the given tags.
func (p *PgvectorIndex) SearchByTags(ctx context.Context, tags []string, active *bool, page faq.PageRequest) ([]faq.Document, error) {
	where := `WHERE tags && $1`
	args := []any{tags}
	if active != nil {
		where += " AND active = $2"
		args = append(args, *active)
	}
	query := fmt.Sprintf(`
		SELECT id, content, embedding, question, answer, tags, instruction, url, active, timestamp
		FROM faq_documents %s
		ORDER BY timestamp DESC
		LIMIT %d OFFSET %d
	`, where, page.Size, page.Offset())

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []faq.Document
	for rows.Next() {
		var (
			doc       faq.Document
			embedding pgvector.Vector
		)
		if err := rows.Scan(&doc.ID, &doc.Content, &embedding, &doc.Metadata.Question,
			&doc.Metadata.Answer, &doc.Metadata.Tags, &doc.Metadata.Instruction,
			&doc.Metadata.URL, &doc.Metadata.Active, &doc.Metadata.Timestamp); err != nil {
			return nil, err
		}
		doc.Embedding = embedding.Slice()
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func upsertArgs(doc faq.Document) []any {
	tags := doc.Metadata.Tags
	if tags == nil {
		tags = []string{}
	}
	return []any{
		doc.ID,
		doc.Content,
		pgvector.NewVector(doc.Embedding),
		doc.Metadata.Question,
		doc.Metadata.Answer,
		tags,
		doc.Metadata.Instruction,
		doc.Metadata.URL,
		doc.Metadata.Active,
		doc.Metadata.Timestamp,
	}
}

var _ faq.DocumentIndex = (*PgvectorIndex)(nil)
