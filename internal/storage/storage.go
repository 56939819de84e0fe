package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/iWorld-y/news_insight/internal/config"
	"github.com/iWorld-y/news_insight/internal/model"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Storage 运行结果归档
type Storage struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

// RunSummary 一次运行的概要
type RunSummary struct {
	ID              string
	Query           string
	StartedAt       time.Time
	TotalArticles   int
	Valid           int
	Invalid         int
	FailedAnalyses  int
	DurationSeconds float64
}

// NewStorage 打开数据库并初始化表结构
func NewStorage(cfg config.DBConfig) (*Storage, error) {
	var driver, dsn string
	switch cfg.Driver {
	case DriverPostgres:
		driver, dsn = DriverPostgres, cfg.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
				cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)
		}
	case DriverSQLite:
		driver, dsn = DriverSQLite, cfg.Path
		if dsn == "" {
			dsn = cfg.DSN
		}
		if dsn == "" {
			return nil, errors.New("sqlite path is empty")
		}
	default:
		return nil, fmt.Errorf("unsupported db driver: %q", cfg.Driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if driver == DriverSQLite {
		// :memory: 数据库每个连接各自独立
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := newStorage(db, driver)
	if err := s.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func newStorage(db *sql.DB, driver string) *Storage {
	var format sq.PlaceholderFormat = sq.Question
	if driver == DriverPostgres {
		format = sq.Dollar
	}
	return &Storage{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(format),
	}
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) initSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			started_at TEXT NOT NULL,
			total_articles INTEGER NOT NULL,
			valid INTEGER NOT NULL,
			invalid INTEGER NOT NULL,
			failed_analyses INTEGER NOT NULL,
			duration_seconds DOUBLE PRECISION NOT NULL,
			statistics TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS combined_records (
			run_id TEXT NOT NULL REFERENCES runs(id),
			article_id INTEGER NOT NULL,
			title TEXT,
			source TEXT,
			author TEXT,
			url TEXT,
			published_at TEXT,
			full_text TEXT,
			gist TEXT,
			sentiment TEXT,
			tone TEXT,
			analysis_model TEXT,
			analysis_success INTEGER,
			is_valid INTEGER,
			result TEXT,
			reasoning TEXT,
			corrections TEXT,
			validator_model TEXT,
			PRIMARY KEY (run_id, article_id)
		)`,
	}

	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// SaveRun 在一个事务中写入运行概要与全部记录
func (s *Storage) SaveRun(ctx context.Context, stats model.RunStatistics, startedAt time.Time, records []model.CombinedRecord) (err error) {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal statistics: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				err = fmt.Errorf("%w: %v", err, rerr)
			}
		}
	}()

	query, args, err := s.builder.Insert("runs").
		Columns("id", "query", "started_at", "total_articles", "valid", "invalid", "failed_analyses", "duration_seconds", "statistics").
		Values(stats.RunID, stats.Query, startedAt.UTC().Format(time.RFC3339), stats.TotalArticles,
			stats.Valid, stats.Invalid, stats.FailedAnalyses, stats.DurationSeconds, string(statsJSON)).
		ToSql()
	if err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if len(records) > 0 {
		insert := s.builder.Insert("combined_records").
			Columns("run_id", "article_id", "title", "source", "author", "url", "published_at", "full_text",
				"gist", "sentiment", "tone", "analysis_model", "analysis_success",
				"is_valid", "result", "reasoning", "corrections", "validator_model")
		for _, r := range records {
			corrections, mErr := json.Marshal(r.Validation.Corrections)
			if mErr != nil {
				return fmt.Errorf("marshal corrections: %w", mErr)
			}
			var published string
			if !r.Article.PublishedAt.IsZero() {
				published = r.Article.PublishedAt.UTC().Format(time.RFC3339)
			}
			insert = insert.Values(
				stats.RunID, r.Article.ID, r.Article.Title, r.Article.Source, r.Article.Author, r.Article.URL,
				published, cleanText(r.Article.FullText),
				r.Analysis.Gist, string(r.Analysis.Sentiment), string(r.Analysis.Tone), r.Analysis.Model, boolInt(r.Analysis.Success),
				boolInt(r.Validation.IsValid), r.Validation.Result, cleanText(r.Validation.Reasoning), string(corrections), r.Validation.Model,
			)
		}
		query, args, err = insert.ToSql()
		if err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert records: %w", err)
		}
	}

	return tx.Commit()
}

// ListRuns 按开始时间倒序列出最近的运行
func (s *Storage) ListRuns(ctx context.Context, limit uint64) ([]RunSummary, error) {
	q := s.builder.Select("id", "query", "started_at", "total_articles", "valid", "invalid", "failed_analyses", "duration_seconds").
		From("runs").
		OrderBy("started_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var started string
		if err := rows.Scan(&r.ID, &r.Query, &started, &r.TotalArticles, &r.Valid, &r.Invalid, &r.FailedAnalyses, &r.DurationSeconds); err != nil {
			return nil, err
		}
		if r.StartedAt, err = time.Parse(time.RFC3339, started); err != nil {
			return nil, fmt.Errorf("parse started_at %q: %w", started, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// CountRecords 某次运行保存的记录数
func (s *Storage) CountRecords(ctx context.Context, runID string) (int, error) {
	query, args, err := s.builder.Select("COUNT(*)").From("combined_records").Where(sq.Eq{"run_id": runID}).ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// cleanText 移除无效的 UTF-8 字符与 NULL 字节，PostgreSQL 文本字段不支持 NULL 字节
func cleanText(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	return strings.ReplaceAll(s, "\x00", "")
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
