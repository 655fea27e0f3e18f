package repository

import (
	"context"
	"database/sql"
	"fmt"

	"draftforge/internal/model"
)

type ResearchRepository struct {
	db    *sql.DB
	table string
}

func NewResearchRepository(db *sql.DB, table string) *ResearchRepository {
	if table == "" {
		table = "research_doc"
	}
	return &ResearchRepository{db: db, table: table}
}

// SaveDocs upserts research documents by ID. Docs carrying a stable
// URL-derived ID collapse onto one row across repeated research runs.
func (r *ResearchRepository) SaveDocs(ctx context.Context, docs []model.ResearchDoc) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s(id, title, author, raw_content, clean_content, url, source)
		VALUES($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			raw_content = EXCLUDED.raw_content,
			clean_content = EXCLUDED.clean_content,
			fetched_at = now()
	`, r.table))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, d := range docs {
		_, err := stmt.ExecContext(ctx, d.ID, d.Title, d.Author, d.RawContent,
			d.CleanContent, d.URL, d.Source)
		if err != nil {
			return fmt.Errorf("upsert research doc %s: %w", d.ID, err)
		}
	}

	return tx.Commit()
}

func (r *ResearchRepository) GetBySource(ctx context.Context, source string) ([]model.ResearchDoc, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, title, author, raw_content, clean_content, url, source, fetched_at
		FROM %s
		WHERE source = $1
		ORDER BY fetched_at DESC
	`, r.table), source)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []model.ResearchDoc
	for rows.Next() {
		var d model.ResearchDoc
		err := rows.Scan(&d.ID, &d.Title, &d.Author, &d.RawContent,
			&d.CleanContent, &d.URL, &d.Source, &d.FetchedAt)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return docs, nil
}
