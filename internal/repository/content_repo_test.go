package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-site-api/internal/models"
)

func TestEncodeMDXLayout(t *testing.T) {
	data, err := EncodeMDX(map[string]interface{}{"title": "Hello"}, "Body text\n\n")
	require.NoError(t, err)
	require.Equal(t, "---\ntitle: Hello\n---\n\nBody text\n", string(data))
}

func TestDecodeMDXRoundTrip(t *testing.T) {
	post := models.BlogPost{
		Title: "Launch",
		Tags:  []string{"news"},
		Date:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	data, err := EncodeMDX(post, "# Launch\n\nWe shipped.")
	require.NoError(t, err)

	var decoded models.BlogPost
	body, err := DecodeMDX(data, &decoded)
	require.NoError(t, err)
	require.Equal(t, "# Launch\n\nWe shipped.", body)
	require.Equal(t, "Launch", decoded.Title)
	require.Equal(t, []string{"news"}, decoded.Tags)
	require.True(t, post.Date.Equal(decoded.Date))
}

func TestDecodeMDXRequiresFence(t *testing.T) {
	var out map[string]interface{}
	_, err := DecodeMDX([]byte("no front matter"), &out)
	require.ErrorIs(t, err, ErrMissingFrontMatter)
}

func TestContentRepositoryPostsAndPages(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo, err := NewContentRepository(dir)
	require.NoError(t, err)

	older := models.BlogPost{Slug: "older", Title: "Older", Date: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Body: "a"}
	newer := models.BlogPost{Slug: "newer", Title: "Newer", Date: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), Body: "b"}
	require.NoError(t, repo.CreatePost(ctx, older))
	require.NoError(t, repo.CreatePost(ctx, newer))
	require.ErrorIs(t, repo.CreatePost(ctx, older), ErrDuplicate)

	exists, err := repo.PostExists(ctx, "older")
	require.NoError(t, err)
	require.True(t, exists)

	posts, err := repo.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	require.Equal(t, "newer", posts[0].Slug)
	require.Equal(t, "b", posts[0].Body)

	page := "---\ntitle: About\n---\n\nAbout us\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pages", "about.mdx"), []byte(page), 0o644))

	pages, err := repo.ListPages(ctx)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	require.Equal(t, "about", pages[0].Slug)
	require.Equal(t, "About", pages[0].Title)
}
