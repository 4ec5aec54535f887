package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-site-api/internal/dto"
	"github.com/noah-isme/gema-site-api/internal/models"
	"github.com/noah-isme/gema-site-api/internal/repository"
	"github.com/noah-isme/gema-site-api/pkg/githubrepo"
)

const contributorCacheKey = "contributors:remote"

// ContributorService manages the contributor roster.
type ContributorService interface {
	List(ctx context.Context) (dto.ContributorListResponse, error)
	Create(ctx context.Context, req dto.ContributorCreateRequest, actor Principal) (models.Contributor, error)
	UpdateRole(ctx context.Context, id string, req dto.ContributorRoleUpdateRequest, actor Principal) (models.Contributor, error)
	Delete(ctx context.Context, id string, actor Principal) error
	Sync(ctx context.Context, actor Principal) (dto.ContributorSyncResponse, error)
}

// ContributorConfig tunes remote synchronisation.
type ContributorConfig struct {
	CacheTTL      time.Duration
	FetchActivity bool
}

type contributorService struct {
	repo      repository.ContributorRepository
	remote    RemoteRepository
	cache     *redis.Client
	audit     AuditRecorder
	validator *validator.Validate
	cfg       ContributorConfig
	logger    zerolog.Logger
	now       func() time.Time
}

// NewContributorService constructs the contributor service. remote and cache may be nil.
func NewContributorService(repo repository.ContributorRepository, remote RemoteRepository, cache *redis.Client, audit AuditRecorder, validate *validator.Validate, cfg ContributorConfig, logger zerolog.Logger) ContributorService {
	return &contributorService{
		repo:      repo,
		remote:    remote,
		cache:     cache,
		audit:     audit,
		validator: validate,
		cfg:       cfg,
		logger:    logger.With().Str("component", "contributor_service").Logger(),
		now:       time.Now,
	}
}

func (s *contributorService) List(ctx context.Context) (dto.ContributorListResponse, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return dto.ContributorListResponse{}, err
	}
	return dto.ContributorListResponse{Contributors: items, Total: len(items)}, nil
}

func (s *contributorService) Create(ctx context.Context, req dto.ContributorCreateRequest, actor Principal) (models.Contributor, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Contributor{}, err
	}

	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = "manual-" + uuid.NewString()
	}
	role := req.Role
	if role == "" {
		role = models.ContributorRoleCommunity
	}
	accountType := req.AccountType
	if accountType == "" {
		accountType = models.AccountTypeUser
	}
	login := strings.TrimSpace(req.Login)
	profileURL := strings.TrimSpace(req.ProfileURL)
	if profileURL == "" {
		profileURL = "https://github.com/" + login
	}

	contributor := models.Contributor{
		ID:                id,
		Login:             login,
		DisplayName:       strings.TrimSpace(req.DisplayName),
		AvatarURL:         strings.TrimSpace(req.AvatarURL),
		ProfileURL:        profileURL,
		ContributionCount: req.ContributionCount,
		AccountType:       accountType,
		Role:              role,
		Manual:            true,
	}
	if err := s.repo.Create(ctx, contributor); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return models.Contributor{}, ErrContributorExists
		}
		return models.Contributor{}, err
	}

	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Action:          models.AuditContributorAdded,
		ActingAdmin:     actor.Email,
		TargetPrincipal: contributor.ID,
		Details:         fmt.Sprintf("Added contributor %s", contributor.Login),
		Metadata:        map[string]interface{}{"login": contributor.Login, "role": contributor.Role},
	})
	return contributor, nil
}

func (s *contributorService) UpdateRole(ctx context.Context, id string, req dto.ContributorRoleUpdateRequest, actor Principal) (models.Contributor, error) {
	if !models.IsValidContributorRole(req.Role) {
		return models.Contributor{}, ErrInvalidContributorRole
	}

	var previous string
	updated, err := s.repo.Update(ctx, id, func(c *models.Contributor) error {
		previous = c.Role
		c.Role = req.Role
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Contributor{}, ErrContributorNotFound
		}
		return models.Contributor{}, err
	}

	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Action:          models.AuditContributorUpdated,
		ActingAdmin:     actor.Email,
		TargetPrincipal: updated.ID,
		Details:         fmt.Sprintf("Changed role of %s from %s to %s", updated.Login, previous, updated.Role),
		Metadata:        map[string]interface{}{"previousRole": previous, "newRole": updated.Role},
	})
	return updated, nil
}

func (s *contributorService) Delete(ctx context.Context, id string, actor Principal) error {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrContributorNotFound
		}
		return err
	}

	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Action:          models.AuditContributorRemoved,
		ActingAdmin:     actor.Email,
		TargetPrincipal: removed.ID,
		Details:         fmt.Sprintf("Removed contributor %s", removed.Login),
	})
	return nil
}

// Sync merges the remote contributor list into the roster. Existing entries keep their
// admin-assigned role; new entries start as contributors.
func (s *contributorService) Sync(ctx context.Context, actor Principal) (dto.ContributorSyncResponse, error) {
	if s.remote == nil {
		return dto.ContributorSyncResponse{}, ErrRemoteNotConfigured
	}

	remote, cached, err := s.fetchRemote(ctx)
	if err != nil {
		return dto.ContributorSyncResponse{}, err
	}

	activity := map[string]githubrepo.Activity{}
	if s.cfg.FetchActivity {
		for _, item := range remote {
			stats, err := s.remote.Activity(ctx, item.Login)
			if err != nil {
				s.logger.Warn().Err(err).Str("login", item.Login).Msg("failed to fetch contributor activity")
				continue
			}
			activity[item.Login] = stats
		}
	}

	now := s.now().UTC()
	result := dto.ContributorSyncResponse{Cached: cached}
	merged, err := s.repo.Replace(ctx, func(current []models.Contributor) ([]models.Contributor, error) {
		index := make(map[string]int, len(current))
		for i, c := range current {
			index[c.ID] = i
		}

		for _, item := range remote {
			id := strconv.FormatInt(item.ID, 10)
			accountType := models.AccountTypeUser
			if item.Type == models.AccountTypeBot {
				accountType = models.AccountTypeBot
			}

			if i, ok := index[id]; ok {
				existing := &current[i]
				existing.Login = item.Login
				existing.AvatarURL = item.AvatarURL
				existing.ProfileURL = item.ProfileURL
				existing.AccountType = accountType
				if item.Contributions > existing.ContributionCount {
					// the remote reports counts only, so a higher count marks new activity
					existing.LastContributionAt = &now
				}
				existing.ContributionCount = item.Contributions
				existing.CommitCount = item.Contributions
				if stats, ok := activity[item.Login]; ok {
					existing.PRCount = stats.PullRequests
					existing.IssueCount = stats.Issues
				}
				result.Updated++
				continue
			}

			added := models.Contributor{
				ID:                id,
				Login:             item.Login,
				AvatarURL:         item.AvatarURL,
				ProfileURL:        item.ProfileURL,
				ContributionCount: item.Contributions,
				AccountType:       accountType,
				Role:              models.ContributorRoleContributor,
				CommitCount:       item.Contributions,
			}
			if stats, ok := activity[item.Login]; ok {
				added.PRCount = stats.PullRequests
				added.IssueCount = stats.Issues
			}
			current = append(current, added)
			index[id] = len(current) - 1
			result.Added++
		}
		return current, nil
	})
	if err != nil {
		return dto.ContributorSyncResponse{}, err
	}

	result.Total = len(merged)
	s.logger.Info().Int("added", result.Added).Int("updated", result.Updated).Bool("cached", cached).Msg("contributors synced")
	if actor.Email != "" {
		recordAudit(ctx, s.audit, s.logger, AuditEntry{
			Action:      models.AuditContributorUpdated,
			ActingAdmin: actor.Email,
			Details:     fmt.Sprintf("Synced contributors: %d added, %d updated", result.Added, result.Updated),
			Metadata:    map[string]interface{}{"added": result.Added, "updated": result.Updated, "sync": true},
		})
	}
	return result, nil
}

func (s *contributorService) fetchRemote(ctx context.Context) ([]githubrepo.Contributor, bool, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, contributorCacheKey).Result()
		if err == nil {
			var items []githubrepo.Contributor
			if unmarshalErr := json.Unmarshal([]byte(cached), &items); unmarshalErr == nil {
				return items, true, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read contributor cache")
		}
	}

	items, err := s.remote.ListContributors(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}

	if s.cache != nil && s.cfg.CacheTTL > 0 {
		if payload, err := json.Marshal(items); err == nil {
			if err := s.cache.Set(ctx, contributorCacheKey, payload, s.cfg.CacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store contributor cache")
			}
		}
	}
	return items, false, nil
}
