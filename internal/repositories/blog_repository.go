package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"game_store_backend/internal/models"
)

// BlogRepository stores blog posts.
type BlogRepository interface {
	CreatePost(ctx context.Context, executor SQLExecutor, post *models.BlogPost) (int64, error)
	GetPostByID(ctx context.Context, id int64) (*models.BlogPost, error)
	GetPosts(ctx context.Context, publishedOnly bool, category *string, page, pageSize int) ([]models.BlogPost, int, error)
	UpdatePost(ctx context.Context, executor SQLExecutor, post *models.BlogPost) error
	IncrementViews(ctx context.Context, id int64) (int, error)
	DeletePost(ctx context.Context, executor SQLExecutor, id int64) error
}

type blogRepository struct {
	db *sql.DB
}

func NewBlogRepository(db *sql.DB) BlogRepository {
	return &blogRepository{db: db}
}

const postColumns = `id, title, title_fr, title_ar, content, content_fr, content_ar, excerpt, image_url, category,
	author_id, is_published, published_at, views, created_at, updated_at`

func scanPost(row scanner, extra ...interface{}) (*models.BlogPost, error) {
	p := &models.BlogPost{}
	dest := []interface{}{&p.ID, &p.Title, &p.TitleFr, &p.TitleAr, &p.Content, &p.ContentFr, &p.ContentAr, &p.Excerpt,
		&p.ImageURL, &p.Category, &p.AuthorID, &p.IsPublished, &p.PublishedAt, &p.Views, &p.CreatedAt, &p.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *blogRepository) CreatePost(ctx context.Context, executor SQLExecutor, post *models.BlogPost) (int64, error) {
	query := `INSERT INTO blog_posts (title, title_fr, title_ar, content, content_fr, content_ar, excerpt, image_url,
	                                  category, author_id, is_published, published_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	          RETURNING id, created_at, updated_at`
	err := executor.QueryRowContext(ctx, query,
		post.Title, post.TitleFr, post.TitleAr, post.Content, post.ContentFr, post.ContentAr, post.Excerpt, post.ImageURL,
		post.Category, post.AuthorID, post.IsPublished, post.PublishedAt,
	).Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return 0, mapWriteError(err, "creating blog post")
	}
	return post.ID, nil
}

func (r *blogRepository) GetPostByID(ctx context.Context, id int64) (*models.BlogPost, error) {
	p, err := scanPost(r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM blog_posts WHERE id = $1`, id))
	if err != nil {
		return nil, mapReadError(err, fmt.Sprintf("getting blog post ID %d", id))
	}
	return p, nil
}

func (r *blogRepository) GetPosts(ctx context.Context, publishedOnly bool, category *string, page, pageSize int) ([]models.BlogPost, int, error) {
	query := `SELECT ` + postColumns + `, COUNT(*) OVER() AS total_count FROM blog_posts
	          WHERE ($1 = FALSE OR is_published) AND ($2::TEXT IS NULL OR category = $2)
	          ORDER BY COALESCE(published_at, created_at) DESC
	          LIMIT $3 OFFSET $4`
	rows, err := r.db.QueryContext(ctx, query, publishedOnly, category, pageSize, offsetFor(page, pageSize))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying blog posts: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	posts := []models.BlogPost{}
	total := 0
	for rows.Next() {
		p, err := scanPost(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning blog post: %v", ErrDatabaseError, err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating blog posts: %v", ErrDatabaseError, err)
	}
	return posts, total, nil
}

func (r *blogRepository) UpdatePost(ctx context.Context, executor SQLExecutor, post *models.BlogPost) error {
	query := `UPDATE blog_posts
	          SET title = $1, title_fr = $2, title_ar = $3, content = $4, content_fr = $5, content_ar = $6,
	              excerpt = $7, image_url = $8, category = $9, is_published = $10, published_at = $11, updated_at = NOW()
	          WHERE id = $12`
	result, err := executor.ExecContext(ctx, query,
		post.Title, post.TitleFr, post.TitleAr, post.Content, post.ContentFr, post.ContentAr,
		post.Excerpt, post.ImageURL, post.Category, post.IsPublished, post.PublishedAt, post.ID)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("updating blog post ID %d", post.ID))
	}
	return expectAffected(result, fmt.Sprintf("updating blog post ID %d", post.ID))
}

// IncrementViews bumps the counter of a published post in one statement.
func (r *blogRepository) IncrementViews(ctx context.Context, id int64) (int, error) {
	var views int
	err := r.db.QueryRowContext(ctx,
		`UPDATE blog_posts SET views = views + 1 WHERE id = $1 AND is_published RETURNING views`, id).Scan(&views)
	if err != nil {
		return 0, mapReadError(err, fmt.Sprintf("incrementing views of blog post ID %d", id))
	}
	return views, nil
}

func (r *blogRepository) DeletePost(ctx context.Context, executor SQLExecutor, id int64) error {
	result, err := executor.ExecContext(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("deleting blog post ID %d", id))
	}
	return expectAffected(result, fmt.Sprintf("deleting blog post ID %d", id))
}
