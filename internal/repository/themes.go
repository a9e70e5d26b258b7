package repository

import (
	"context"
	"database/sql"

	"github.com/bossnova23/shopify-tracker/internal/models"
)

func (r *Repository) CreateTheme(ctx context.Context, t *models.Theme) error {
	return r.db.QueryRowContext(ctx, r.db.Rebind(`
		INSERT INTO themes (name, style, primary_color, secondary_color, accent_color,
		                    font_primary, font_secondary, created_at, preview_data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`), t.Name, t.Style, t.PrimaryColor, t.SecondaryColor, t.AccentColor,
		t.FontPrimary, t.FontSecondary, t.CreatedAt.UTC(), nullString(t.PreviewData)).Scan(&t.ID)
}

// GetRecentThemes returns up to limit themes, newest first.
func (r *Repository) GetRecentThemes(ctx context.Context, limit int) ([]models.Theme, error) {
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(`
		SELECT id, name, style, primary_color, secondary_color, accent_color,
		       font_primary, font_secondary, created_at, preview_data
		FROM themes
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	themes := []models.Theme{}
	for rows.Next() {
		var t models.Theme
		var preview sql.NullString
		if err := rows.Scan(&t.ID, &t.Name, &t.Style, &t.PrimaryColor, &t.SecondaryColor, &t.AccentColor,
			&t.FontPrimary, &t.FontSecondary, &t.CreatedAt, &preview); err != nil {
			return nil, err
		}
		t.PreviewData = preview.String
		themes = append(themes, t)
	}
	return themes, rows.Err()
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
