package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-site-api/internal/dto"
	"github.com/noah-isme/gema-site-api/internal/models"
	"github.com/noah-isme/gema-site-api/internal/repository"
)

const maxSlugAttempts = 100

// BlogService authors local blog posts and lists local content.
type BlogService interface {
	ListPosts(ctx context.Context) (dto.BlogListResponse, error)
	ListPages(ctx context.Context) (dto.PageListResponse, error)
	Create(ctx context.Context, req dto.BlogCreateRequest, actor Principal) (dto.BlogCreateResponse, error)
}

type blogService struct {
	repo       repository.ContentRepository
	newsletter CampaignSender
	audit      AuditRecorder
	validator  *validator.Validate
	baseURL    string
	logger     zerolog.Logger
	now        func() time.Time
}

// NewBlogService constructs the blog service. newsletter may be nil.
func NewBlogService(repo repository.ContentRepository, newsletter CampaignSender, audit AuditRecorder, validate *validator.Validate, baseURL string, logger zerolog.Logger) BlogService {
	return &blogService{
		repo:       repo,
		newsletter: newsletter,
		audit:      audit,
		validator:  validate,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger.With().Str("component", "blog_service").Logger(),
		now:        time.Now,
	}
}

func (s *blogService) ListPosts(ctx context.Context) (dto.BlogListResponse, error) {
	posts, err := s.repo.ListPosts(ctx)
	if err != nil {
		return dto.BlogListResponse{}, err
	}
	return dto.BlogListResponse{Posts: posts, Total: len(posts)}, nil
}

func (s *blogService) ListPages(ctx context.Context) (dto.PageListResponse, error) {
	pages, err := s.repo.ListPages(ctx)
	if err != nil {
		return dto.PageListResponse{}, err
	}
	return dto.PageListResponse{Pages: pages, Total: len(pages)}, nil
}

// Create persists the post and then, independently, attempts the newsletter send.
// The send outcome is reported in NewsletterResult and never fails the creation.
func (s *blogService) Create(ctx context.Context, req dto.BlogCreateRequest, actor Principal) (dto.BlogCreateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.BlogCreateResponse{}, err
	}

	date := s.now().UTC().Truncate(24 * time.Hour)
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return dto.BlogCreateResponse{}, err
		}
		date = parsed
	}

	author := strings.TrimSpace(req.Author)
	if author == "" {
		author = actor.Name
	}
	if author == "" {
		author = actor.Email
	}

	post := models.BlogPost{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Author:      author,
		Tags:        sanitizeTags(req.Tags),
		Date:        date,
		Draft:       req.Draft,
		Newsletter:  req.Newsletter,
		Body:        req.Body,
	}

	if err := s.persist(ctx, &post); err != nil {
		return dto.BlogCreateResponse{}, err
	}
	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Action:      models.AuditContentCreated,
		ActingAdmin: actor.Email,
		Details:     fmt.Sprintf("Created blog post: %s", post.Title),
		Metadata:    map[string]interface{}{"slug": post.Slug, "draft": post.Draft},
	})
	s.logger.Info().Str("slug", post.Slug).Str("actor", maskEmailAddress(actor.Email)).Msg("blog post created")

	response := dto.BlogCreateResponse{Post: post}
	if req.SendNewsletter && req.Newsletter {
		result := s.distribute(ctx, post, actor)
		response.NewsletterResult = &result
	}
	return response, nil
}

func (s *blogService) persist(ctx context.Context, post *models.BlogPost) error {
	base := slugify(post.Title)
	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		slug := base
		if attempt > 1 {
			slug = fmt.Sprintf("%s-%d", base, attempt)
		}

		exists, err := s.repo.PostExists(ctx, slug)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		post.Slug = slug
		err = s.repo.CreatePost(ctx, *post)
		if errors.Is(err, repository.ErrDuplicate) {
			continue
		}
		return err
	}
	return fmt.Errorf("unable to allocate a unique slug for %q", post.Title)
}

func (s *blogService) distribute(ctx context.Context, post models.BlogPost, actor Principal) dto.NewsletterResult {
	if s.newsletter == nil {
		return dto.NewsletterResult{Success: false, Error: "newsletter delivery is not configured"}
	}
	if post.Draft {
		return dto.NewsletterResult{Success: false, Error: "draft posts are not distributed"}
	}

	link := s.baseURL + "/blog/" + post.Slug
	body := fmt.Sprintf(`<h1>%s</h1><p>%s</p><p><a href="%s">Read the full post</a></p>`,
		html.EscapeString(post.Title), html.EscapeString(post.Description), html.EscapeString(link))

	sent, err := s.newsletter.SendCampaign(ctx, Campaign{Subject: post.Title, HTML: body, Name: "blog-" + post.Slug, Actor: actor})
	if err != nil {
		s.logger.Warn().Err(err).Str("slug", post.Slug).Msg("newsletter send failed after publish")
		return dto.NewsletterResult{Success: false, Sent: sent.Sent, Failed: sent.Failed, Error: err.Error()}
	}
	result := dto.NewsletterResult{Success: sent.Failed == 0, Sent: sent.Sent, Failed: sent.Failed}
	if sent.Failed > 0 {
		result.Error = fmt.Sprintf("%d of %d deliveries failed", sent.Failed, sent.Total)
	}
	return result
}
