package repo

import (
	"context"
	"database/sql"

	"github.com/inkwell/inkwell/internal/models"
)

// ==========================
// PostRepo
// ==========================
type PostRepo struct {
	DB *sql.DB
}

// ==========================
// Constructor
// ==========================
func NewPostRepo(db *sql.DB) *PostRepo {
	return &PostRepo{DB: db}
}

// scanPost reads one posts row; img is nullable in the schema.
func scanPost(row interface{ Scan(...interface{}) error }, post *models.Post, withUsername bool) error {
	var img sql.NullString
	dest := []interface{}{
		&post.ID, &post.Title, &img, &post.Content,
		&post.Description, &post.Category, &post.UID, &post.Date,
	}
	if withUsername {
		dest = append(dest, &post.Username)
	}
	if err := row.Scan(dest...); err != nil {
		return err
	}
	post.Img = img.String
	return nil
}

// ==========================
// Create Post
// ==========================
func (r *PostRepo) Create(ctx context.Context, title, img, content, description, category string, uid int) (*models.Post, error) {
	query := `
		INSERT INTO posts (title, img, content, description, category, uid, date)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		RETURNING id, title, img, content, description, category, uid, date
	`

	post := &models.Post{}

	row := r.DB.QueryRowContext(ctx, query, title, nullable(img), content, description, category, uid)
	if err := scanPost(row, post, false); err != nil {
		return nil, err
	}

	return post, nil
}

// ==========================
// List Posts (optional category filter)
// ==========================
func (r *PostRepo) List(ctx context.Context, category string) ([]models.Post, error) {
	query := `
		SELECT id, title, img, content, description, category, uid, date
		FROM posts
	`
	var args []interface{}
	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY date DESC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var p models.Post
		if err := scanPost(rows, &p, false); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}

	return posts, rows.Err()
}

// ==========================
// Get Post By ID (joins owner username)
// ==========================
func (r *PostRepo) GetByID(ctx context.Context, id int) (*models.Post, error) {
	query := `
		SELECT p.id, p.title, p.img, p.content, p.description, p.category, p.uid, p.date, u.username
		FROM posts p
		JOIN users u ON u.id = p.uid
		WHERE p.id = $1
	`

	post := &models.Post{}

	row := r.DB.QueryRowContext(ctx, query, id)
	if err := scanPost(row, post, true); err != nil {
		return nil, err
	}

	return post, nil
}

// ==========================
// Update Post
// ==========================
func (r *PostRepo) Update(ctx context.Context, id int, title, img, content, description, category string) (*models.Post, error) {
	query := `
		UPDATE posts
		SET title = $1, img = $2, content = $3, description = $4, category = $5
		WHERE id = $6
		RETURNING id, title, img, content, description, category, uid, date
	`

	post := &models.Post{}

	row := r.DB.QueryRowContext(ctx, query, title, nullable(img), content, description, category, id)
	if err := scanPost(row, post, false); err != nil {
		return nil, err
	}

	return post, nil
}

// ==========================
// Delete Post
// ==========================
func (r *PostRepo) DeleteByID(ctx context.Context, id int) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// ==========================
// List Image References
// ==========================

// ListImages returns every non-null img reference currently attached to a
// post. The sweeper diffs this against the upload store.
func (r *PostRepo) ListImages(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT img FROM posts WHERE img IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var imgs []string
	for rows.Next() {
		var img string
		if err := rows.Scan(&img); err != nil {
			return nil, err
		}
		imgs = append(imgs, img)
	}

	return imgs, rows.Err()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
