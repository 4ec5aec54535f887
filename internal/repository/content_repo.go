package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/noah-isme/gema-site-api/internal/models"
)

const mdxExt = ".mdx"

// ContentRepository reads and writes local MDX content.
type ContentRepository interface {
	ListPosts(ctx context.Context) ([]models.BlogPost, error)
	PostExists(ctx context.Context, slug string) (bool, error)
	CreatePost(ctx context.Context, post models.BlogPost) error
	ListPages(ctx context.Context) ([]models.Page, error)
}

type contentRepository struct {
	blogDir string
	pageDir string
	mu      sync.Mutex
}

// NewContentRepository binds to <contentDir>/blog and <contentDir>/pages.
func NewContentRepository(contentDir string) (ContentRepository, error) {
	repo := &contentRepository{
		blogDir: filepath.Join(contentDir, "blog"),
		pageDir: filepath.Join(contentDir, "pages"),
	}
	for _, dir := range []string{repo.blogDir, repo.pageDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return repo, nil
}

func (r *contentRepository) ListPosts(ctx context.Context) ([]models.BlogPost, error) {
	posts := []models.BlogPost{}
	err := r.walk(ctx, r.blogDir, func(slug string, data []byte) error {
		var post models.BlogPost
		body, err := DecodeMDX(data, &post)
		if err != nil {
			return fmt.Errorf("decode post %s: %w", slug, err)
		}
		post.Slug = slug
		post.Body = body
		posts = append(posts, post)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].Date.Equal(posts[j].Date) {
			return posts[i].Slug < posts[j].Slug
		}
		return posts[i].Date.After(posts[j].Date)
	})
	return posts, nil
}

func (r *contentRepository) PostExists(ctx context.Context, slug string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := os.Stat(filepath.Join(r.blogDir, slug+mdxExt))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// CreatePost writes a new post; an existing file with the same slug yields ErrDuplicate.
func (r *contentRepository) CreatePost(ctx context.Context, post models.BlogPost) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := EncodeMDX(post, post.Body)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	path := filepath.Join(r.blogDir, post.Slug+mdxExt)
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return ErrDuplicate
		}
		return err
	}
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return err
	}
	return file.Close()
}

func (r *contentRepository) ListPages(ctx context.Context) ([]models.Page, error) {
	pages := []models.Page{}
	err := r.walk(ctx, r.pageDir, func(slug string, data []byte) error {
		var page models.Page
		body, err := DecodeMDX(data, &page)
		if err != nil {
			return fmt.Errorf("decode page %s: %w", slug, err)
		}
		page.Slug = slug
		page.Body = body
		pages = append(pages, page)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Slug < pages[j].Slug })
	return pages, nil
}

func (r *contentRepository) walk(ctx context.Context, dir string, fn func(slug string, data []byte) error) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), mdxExt) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return err
		}
		if err := fn(strings.TrimSuffix(entry.Name(), mdxExt), data); err != nil {
			return err
		}
	}
	return nil
}
