package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ ArticleRepository = (*ArticleRepo)(nil)

// ArticleRepo handles database operations for news articles.
type ArticleRepo struct {
	db *DB
}

func NewArticleRepo(db *DB) *ArticleRepo {
	return &ArticleRepo{db: db}
}

// InsertArticles upserts a batch of articles keyed by
// (ticker, headline). The key carries no unique constraint (imported
// historical data may hold duplicates, cleaned by dedup maintenance),
// so the upsert is an update-then-insert pair inside one transaction;
// the single-connection pool keeps the pair race-free. A re-seen
// article refreshes its content columns but never re-stamps
// created_at, so created_at always reflects first-seen time.
// Sentiment columns are written only when hasSentiment is set; an
// unscored upsert leaves them untouched.
func (r *ArticleRepo) InsertArticles(articles []Article, hasSentiment bool) error {
	if len(articles) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var update, insert *sql.Stmt
	if hasSentiment {
		update, err = tx.Prepare(`
			UPDATE article_data SET
				date_posted = ?, source = ?, article_link = ?,
				negative_sentiment = ?, positive_sentiment = ?,
				neutral_sentiment = ?, compound_sentiment = ?
			WHERE ticker = ? AND headline = ?
		`)
	} else {
		update, err = tx.Prepare(`
			UPDATE article_data SET
				date_posted = ?, source = ?, article_link = ?
			WHERE ticker = ? AND headline = ?
		`)
	}
	if err != nil {
		return fmt.Errorf("failed to prepare update: %w", err)
	}
	defer update.Close()

	if hasSentiment {
		insert, err = tx.Prepare(`
			INSERT INTO article_data (
				ticker, headline, date_posted, source, article_link,
				negative_sentiment, positive_sentiment, neutral_sentiment, compound_sentiment
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
	} else {
		insert, err = tx.Prepare(`
			INSERT INTO article_data (
				ticker, headline, date_posted, source, article_link
			) VALUES (?, ?, ?, ?, ?)
		`)
	}
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer insert.Close()

	for _, article := range articles {
		var result sql.Result
		if hasSentiment {
			if !article.Scored() {
				return fmt.Errorf("article %q/%q is missing sentiment fields", article.Ticker, article.Headline)
			}
			result, err = update.Exec(article.DatePosted, article.Source, article.ArticleLink,
				*article.Negative, *article.Positive, *article.Neutral, *article.Compound,
				article.Ticker, article.Headline)
		} else {
			result, err = update.Exec(article.DatePosted, article.Source, article.ArticleLink,
				article.Ticker, article.Headline)
		}
		if err != nil {
			return fmt.Errorf("failed to update article %q/%q: %w", article.Ticker, article.Headline, err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to inspect update result: %w", err)
		}
		if affected > 0 {
			continue
		}

		if hasSentiment {
			_, err = insert.Exec(article.Ticker, article.Headline, article.DatePosted,
				article.Source, article.ArticleLink,
				*article.Negative, *article.Positive, *article.Neutral, *article.Compound)
		} else {
			_, err = insert.Exec(article.Ticker, article.Headline, article.DatePosted,
				article.Source, article.ArticleLink)
		}
		if err != nil {
			return fmt.Errorf("failed to insert article %q/%q: %w", article.Ticker, article.Headline, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit article batch: %w", err)
	}

	return nil
}

// GetArticles returns up to n articles. Filters compose with AND:
// hasSentiment=false restricts to unscored rows, afterDate (when
// non-empty) sets a date_posted lower bound, latest toggles sort
// direction. Value-bearing filters are parameterized.
func (r *ArticleRepo) GetArticles(n int, latest bool, hasSentiment bool, afterDate string) ([]Article, error) {
	query := `
		SELECT ticker, headline, COALESCE(date_posted, ''), COALESCE(source, ''),
		       COALESCE(article_link, ''), COALESCE(content, ''), content_status,
		       negative_sentiment, positive_sentiment, neutral_sentiment, compound_sentiment,
		       created_at
		FROM article_data
		WHERE 1=1`
	var args []interface{}

	if !hasSentiment {
		query += " AND compound_sentiment IS NULL"
	}

	if afterDate != "" {
		query += " AND date_posted >= ?"
		args = append(args, afterDate)
	}

	if latest {
		query += " ORDER BY date_posted DESC"
	} else {
		query += " ORDER BY date_posted ASC"
	}

	query += " LIMIT ?"
	args = append(args, n)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get articles: %w", err)
	}
	defer rows.Close()

	return scanArticles(rows)
}

// GetArticleCount returns the total number of stored articles.
func (r *ArticleRepo) GetArticleCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM article_data").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get article count: %w", err)
	}
	return count, nil
}

// GetArticleStats returns total, scored and unscored article counts.
func (r *ArticleRepo) GetArticleStats() (total, scored, unscored int, err error) {
	err = r.db.QueryRow(`
		SELECT
			COUNT(*) as total,
			SUM(CASE WHEN compound_sentiment IS NOT NULL THEN 1 ELSE 0 END) as scored,
			SUM(CASE WHEN compound_sentiment IS NULL THEN 1 ELSE 0 END) as unscored
		FROM article_data
	`).Scan(&total, &scored, &unscored)

	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to get article stats: %w", err)
	}

	return total, scored, unscored, nil
}

// QueryDuplicates lists rows sharing a (ticker, headline) key beyond
// the earliest-created one. The earliest row ranks 1 and is the
// keeper; everything returned here has rank > 1.
func (r *ArticleRepo) QueryDuplicates() ([]DuplicateRow, error) {
	rows, err := r.db.Query(`
		WITH duplicates_cte AS (
			SELECT
				ROW_NUMBER() OVER (
					PARTITION BY ticker, headline ORDER BY created_at ASC
				) AS rn,
				ticker, headline,
				COALESCE(date_posted, '') AS date_posted,
				COALESCE(article_link, '') AS article_link,
				created_at
			FROM article_data
		)
		SELECT * FROM duplicates_cte WHERE rn > 1
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query duplicates: %w", err)
	}
	defer rows.Close()

	var duplicates []DuplicateRow
	for rows.Next() {
		var d DuplicateRow
		var createdAt string
		if err := rows.Scan(&d.Rank, &d.Ticker, &d.Headline, &d.DatePosted, &d.ArticleLink, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan duplicate row: %w", err)
		}
		d.CreatedAt = parseTimestamp(createdAt)
		duplicates = append(duplicates, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating duplicate rows: %w", err)
	}

	return duplicates, nil
}

// DeduplicateDB deletes every duplicate row with rank > 1, keeping the
// earliest-created row per key. Safe to run repeatedly; a clean table
// deletes nothing.
func (r *ArticleRepo) DeduplicateDB() (int64, error) {
	result, err := r.db.Exec(`
		DELETE FROM article_data
		WHERE rowid IN (
			SELECT rowid FROM (
				SELECT
					rowid,
					ROW_NUMBER() OVER (
						PARTITION BY ticker, headline ORDER BY created_at ASC
					) AS rn
				FROM article_data
			) sub
			WHERE rn > 1
		)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete duplicates: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted duplicates: %w", err)
	}

	return deleted, nil
}

// GetArticlesForExtraction returns articles whose body has not been
// fetched yet, newest first.
func (r *ArticleRepo) GetArticlesForExtraction(limit int) ([]ArticleRef, error) {
	rows, err := r.db.Query(`
		SELECT ticker, headline, COALESCE(source, ''), COALESCE(article_link, '')
		FROM article_data
		WHERE content_status = 'pending' AND article_link IS NOT NULL AND article_link != ''
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get articles for extraction: %w", err)
	}
	defer rows.Close()

	var refs []ArticleRef
	for rows.Next() {
		var ref ArticleRef
		if err := rows.Scan(&ref.Ticker, &ref.Headline, &ref.Source, &ref.ArticleLink); err != nil {
			return nil, fmt.Errorf("failed to scan article ref: %w", err)
		}
		refs = append(refs, ref)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article refs: %w", err)
	}

	return refs, nil
}

// UpdateArticleContent stores extracted body text and its status for
// one article.
func (r *ArticleRepo) UpdateArticleContent(ticker, headline, content, status string) error {
	_, err := r.db.Exec(`
		UPDATE article_data
		SET content = ?, content_status = ?
		WHERE ticker = ? AND headline = ?
	`, content, status, ticker, headline)

	if err != nil {
		return fmt.Errorf("failed to update article content: %w", err)
	}

	return nil
}

func scanArticles(rows *sql.Rows) ([]Article, error) {
	var articles []Article
	for rows.Next() {
		var a Article
		var negative, positive, neutral, compound sql.NullFloat64
		var createdAt string

		err := rows.Scan(&a.Ticker, &a.Headline, &a.DatePosted, &a.Source,
			&a.ArticleLink, &a.Content, &a.ContentStatus,
			&negative, &positive, &neutral, &compound, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}

		a.Negative = nullableFloat(negative)
		a.Positive = nullableFloat(positive)
		a.Neutral = nullableFloat(neutral)
		a.Compound = nullableFloat(compound)
		a.CreatedAt = parseTimestamp(createdAt)

		articles = append(articles, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}

	return articles, nil
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func parseTimestamp(s string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339, "2006-01-02T15:04:05Z07:00"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
