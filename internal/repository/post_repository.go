package repository

import (
	"context"
	"database/sql"
	"fmt"

	"draftforge/internal/model"
)

type PostRepository struct {
	db    *sql.DB
	table string
}

func NewPostRepository(db *sql.DB, table string) *PostRepository {
	if table == "" {
		table = "post"
	}
	return &PostRepository{db: db, table: table}
}

// SavePosts upserts posts by ID, tagging each with its batch and page.
// Retrying a page rewrites the same rows instead of duplicating them.
func (r *PostRepository) SavePosts(ctx context.Context, posts []model.Post, batchNumber, pageNumber int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s(id, title, content, excerpt, link, status, author_id,
			author_name, editor, comments_count, source, date_gmt, modified_gmt,
			batch_number, page_number)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			excerpt = EXCLUDED.excerpt,
			link = EXCLUDED.link,
			status = EXCLUDED.status,
			modified_gmt = EXCLUDED.modified_gmt,
			batch_number = EXCLUDED.batch_number,
			page_number = EXCLUDED.page_number,
			fetched_at = now()
	`, r.table))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range posts {
		_, err := stmt.ExecContext(ctx, p.ID, p.Title, p.Content, p.Excerpt,
			p.Link, p.Status, p.AuthorID, p.AuthorName, p.Editor,
			p.CommentsCount, p.Source, p.DateGMT, p.ModifiedGMT,
			batchNumber, pageNumber)
		if err != nil {
			return fmt.Errorf("upsert post %s: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	err := r.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT id, title, content, clean_content, excerpt, link, status,
			author_id, author_name, editor, comments_count, source,
			date_gmt, modified_gmt, batch_number, page_number, fetched_at
		FROM %s
		WHERE id = $1
	`, r.table), id).Scan(&p.ID, &p.Title, &p.Content, &p.CleanContent,
		&p.Excerpt, &p.Link, &p.Status, &p.AuthorID, &p.AuthorName, &p.Editor,
		&p.CommentsCount, &p.Source, &p.DateGMT, &p.ModifiedGMT,
		&p.BatchNumber, &p.PageNumber, &p.FetchedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *PostRepository) UpdateCleanContent(ctx context.Context, id, cleanContent string) error {
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`
		UPDATE %s SET clean_content = $1 WHERE id = $2
	`, r.table), cleanContent, id)
	return err
}

func (r *PostRepository) GetFeed(ctx context.Context, limit, offset int) ([]model.Post, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, title, content, clean_content, excerpt, link, status,
			author_id, author_name, editor, comments_count, source,
			date_gmt, modified_gmt, batch_number, page_number, fetched_at
		FROM %s
		ORDER BY date_gmt DESC
		LIMIT $1 OFFSET $2
	`, r.table), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		var p model.Post
		err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.CleanContent,
			&p.Excerpt, &p.Link, &p.Status, &p.AuthorID, &p.AuthorName,
			&p.Editor, &p.CommentsCount, &p.Source, &p.DateGMT, &p.ModifiedGMT,
			&p.BatchNumber, &p.PageNumber, &p.FetchedAt)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}

func (r *PostRepository) GetFeedTotal(ctx context.Context) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT COUNT(*) FROM %s
	`, r.table)).Scan(&total)
	return total, err
}
