package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"game_store_backend/internal/cache"
	"game_store_backend/internal/models"
	"game_store_backend/internal/repositories"
	"game_store_backend/pkg/utils"
)

var (
	ErrPostNotFound   = errors.New("blog post not found")
	ErrPostValidation = errors.New("blog post validation error")
)

type BlogPostRequest struct {
	Title       string  `json:"title" binding:"required"`
	TitleFr     *string `json:"title_fr"`
	TitleAr     *string `json:"title_ar"`
	Content     string  `json:"content" binding:"required"`
	ContentFr   *string `json:"content_fr"`
	ContentAr   *string `json:"content_ar"`
	Excerpt     *string `json:"excerpt"`
	ImageURL    *string `json:"image_url"`
	Category    string  `json:"category"`
	IsPublished bool    `json:"is_published"`
}

type BlogService interface {
	ListPublished(ctx context.Context, category *string, page, pageSize int) ([]models.BlogPost, int, error)
	GetPublished(ctx context.Context, id int64) (*models.BlogPost, error)
	IncrementViews(ctx context.Context, id int64) (int, error)
	ListAll(ctx context.Context, category *string, page, pageSize int) ([]models.BlogPost, int, error)
	GetPost(ctx context.Context, id int64) (*models.BlogPost, error)
	CreatePost(ctx context.Context, req BlogPostRequest, authorID *int64) (*models.BlogPost, error)
	UpdatePost(ctx context.Context, id int64, req BlogPostRequest) (*models.BlogPost, error)
	DeletePost(ctx context.Context, id int64) error
}

type blogService struct {
	repo  repositories.BlogRepository
	db    repositories.SQLExecutor
	cache *cache.Cache
	now   func() time.Time
}

func NewBlogService(repo repositories.BlogRepository, db repositories.SQLExecutor, c *cache.Cache) BlogService {
	return &blogService{repo: repo, db: db, cache: c, now: time.Now}
}

type postPage struct {
	Posts []models.BlogPost `json:"posts"`
	Total int               `json:"total"`
}

func (s *blogService) ListPublished(ctx context.Context, category *string, page, pageSize int) ([]models.BlogPost, int, error) {
	page, pageSize = normalizePage(page, pageSize)
	variant := "published:" + strconv.Itoa(page) + ":" + strconv.Itoa(pageSize)
	if category != nil {
		variant += ":" + *category
	}
	res, err := cache.GetOrLoad(ctx, s.cache, tableBlogPosts, variant, func(ctx context.Context) (postPage, error) {
		posts, total, err := s.repo.GetPosts(ctx, true, category, page, pageSize)
		return postPage{Posts: posts, Total: total}, err
	})
	if err != nil {
		return nil, 0, err
	}
	return res.Posts, res.Total, nil
}

func (s *blogService) GetPublished(ctx context.Context, id int64) (*models.BlogPost, error) {
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.IsPublished {
		return nil, ErrPostNotFound
	}
	return post, nil
}

// IncrementViews bumps the counter without invalidating the cached list.
func (s *blogService) IncrementViews(ctx context.Context, id int64) (int, error) {
	views, err := s.repo.IncrementViews(ctx, id)
	if err != nil {
		return 0, wrapNotFound(err, ErrPostNotFound)
	}
	return views, nil
}

func (s *blogService) ListAll(ctx context.Context, category *string, page, pageSize int) ([]models.BlogPost, int, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.repo.GetPosts(ctx, false, category, page, pageSize)
}

func (s *blogService) GetPost(ctx context.Context, id int64) (*models.BlogPost, error) {
	post, err := s.repo.GetPostByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, ErrPostNotFound)
	}
	return post, nil
}

func validatePost(req BlogPostRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrPostValidation)
	}
	if strings.TrimSpace(req.Content) == "" {
		return fmt.Errorf("%w: content is required", ErrPostValidation)
	}
	return nil
}

func (s *blogService) applyRequest(post *models.BlogPost, req BlogPostRequest) {
	post.Title = utils.SanitizeInput(strings.TrimSpace(req.Title))
	post.TitleFr = req.TitleFr
	post.TitleAr = req.TitleAr
	post.Content = req.Content
	post.ContentFr = req.ContentFr
	post.ContentAr = req.ContentAr
	post.Excerpt = req.Excerpt
	post.ImageURL = req.ImageURL
	post.Category = req.Category
	if post.Category == "" {
		post.Category = "news"
	}
	post.IsPublished = req.IsPublished
	// published_at is stamped on the first publish only
	if post.IsPublished && post.PublishedAt == nil {
		now := s.now()
		post.PublishedAt = &now
	}
}

func (s *blogService) CreatePost(ctx context.Context, req BlogPostRequest, authorID *int64) (*models.BlogPost, error) {
	if err := validatePost(req); err != nil {
		return nil, err
	}
	post := &models.BlogPost{AuthorID: authorID}
	s.applyRequest(post, req)
	if _, err := s.repo.CreatePost(ctx, s.db, post); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, tableBlogPosts)
	return s.repo.GetPostByID(ctx, post.ID)
}

func (s *blogService) UpdatePost(ctx context.Context, id int64, req BlogPostRequest) (*models.BlogPost, error) {
	if err := validatePost(req); err != nil {
		return nil, err
	}
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	s.applyRequest(post, req)
	if err := s.repo.UpdatePost(ctx, s.db, post); err != nil {
		return nil, wrapNotFound(err, ErrPostNotFound)
	}
	s.cache.Invalidate(ctx, tableBlogPosts)
	return s.repo.GetPostByID(ctx, id)
}

func (s *blogService) DeletePost(ctx context.Context, id int64) error {
	if err := s.repo.DeletePost(ctx, s.db, id); err != nil {
		return wrapNotFound(err, ErrPostNotFound)
	}
	s.cache.Invalidate(ctx, tableBlogPosts)
	return nil
}
