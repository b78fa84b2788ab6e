package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"facturi/internal/core"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Cascading utility deletes depend on this pragma.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func fmtDate(t time.Time) string {
	return t.Format(dateLayout)
}

func parseDate(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// parseConfigColumn tolerates legacy rows with unparseable config blobs by
// dropping the config rather than failing the read.
func parseConfigColumn(t core.UtilityType, raw string) core.UtilityConfig {
	if raw == "" {
		return nil
	}
	cfg, err := core.ParseConfig(t, []byte(raw))
	if err != nil {
		return nil
	}
	return cfg
}

// --- Categories ---

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, color, icon)
		VALUES (?, ?, ?)
		RETURNING id, name, color, icon, created_at`,
		c.Name, c.Color, c.Icon)
	return scanCategory(row)
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, color, icon, created_at FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("%w: category %d", core.ErrNotFound, id)
	}
	return c, err
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, color, icon, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE categories SET name = ?, color = ?, icon = ?
		WHERE id = ?
		RETURNING id, name, color, icon, created_at`,
		c.Name, c.Color, c.Icon, c.ID)
	updated, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("%w: category %d", core.ErrNotFound, c.ID)
	}
	return updated, err
}

// DeleteCategory refuses to delete categories that still own utilities.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64) error {
	if _, err := r.GetCategory(ctx, id); err != nil {
		return err
	}

	var count int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM utilities WHERE category_id = ?`, id).Scan(&count); err != nil {
		return fmt.Errorf("count category utilities: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: category %d still owns %d utilities", core.ErrInvalidArgument, id, count)
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// --- Utilities ---

func (r *SQLiteRepository) CreateUtility(ctx context.Context, u core.Utility) (core.Utility, error) {
	if _, err := r.GetCategory(ctx, u.CategoryID); err != nil {
		return core.Utility{}, err
	}

	cfg, err := core.EncodeConfig(u.Config)
	if err != nil {
		return core.Utility{}, err
	}

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO utilities (category_id, name, description, utility_type, config)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id, category_id, name, description, utility_type, config, logo_url, created_at`,
		u.CategoryID, u.Name, u.Description, string(u.Type), cfg)
	return scanUtility(row)
}

func (r *SQLiteRepository) GetUtility(ctx context.Context, id int64) (core.Utility, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, category_id, name, description, utility_type, config, logo_url, created_at
		FROM utilities WHERE id = ?`, id)
	u, err := scanUtility(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Utility{}, fmt.Errorf("%w: utility %d", core.ErrNotFound, id)
	}
	return u, err
}

func (r *SQLiteRepository) ListUtilitiesByCategory(ctx context.Context, categoryID int64) ([]core.Utility, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, category_id, name, description, utility_type, config, logo_url, created_at
		FROM utilities WHERE category_id = ? ORDER BY name`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list utilities: %w", err)
	}
	defer rows.Close()

	var out []core.Utility
	for rows.Next() {
		u, err := scanUtility(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdateUtility changes name and description only; the utility type and its
// config are fixed at creation.
func (r *SQLiteRepository) UpdateUtility(ctx context.Context, id int64, name, description string) (core.Utility, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE utilities SET name = ?, description = ?
		WHERE id = ?
		RETURNING id, category_id, name, description, utility_type, config, logo_url, created_at`,
		name, description, id)
	u, err := scanUtility(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Utility{}, fmt.Errorf("%w: utility %d", core.ErrNotFound, id)
	}
	return u, err
}

// DeleteUtility cascades to transactions, installments, readings and
// notifications through the schema's foreign keys.
func (r *SQLiteRepository) DeleteUtility(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM utilities WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete utility: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete utility: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: utility %d", core.ErrNotFound, id)
	}
	return nil
}

func (r *SQLiteRepository) SetUtilityLogo(ctx context.Context, id int64, logoURL string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE utilities SET logo_url = ? WHERE id = ?`, logoURL, id)
	if err != nil {
		return fmt.Errorf("set utility logo: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set utility logo: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: utility %d", core.ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCategory(s scanner) (core.Category, error) {
	var c core.Category
	if err := s.Scan(&c.ID, &c.Name, &c.Color, &c.Icon, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Category{}, err
		}
		return core.Category{}, fmt.Errorf("scan category: %w", err)
	}
	return c, nil
}

func scanUtility(s scanner) (core.Utility, error) {
	var (
		u       core.Utility
		utype   string
		rawCfg  string
		logoURL string
	)
	if err := s.Scan(&u.ID, &u.CategoryID, &u.Name, &u.Description, &utype, &rawCfg, &logoURL, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Utility{}, err
		}
		return core.Utility{}, fmt.Errorf("scan utility: %w", err)
	}
	u.Type = core.UtilityType(utype)
	u.Config = parseConfigColumn(u.Type, rawCfg)
	u.LogoURL = logoURL
	return u, nil
}
