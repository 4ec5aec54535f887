package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/gema-site-api/internal/apperror"
	"github.com/noah-isme/gema-site-api/internal/dto"
	"github.com/noah-isme/gema-site-api/internal/models"
	"github.com/noah-isme/gema-site-api/internal/observability"
	"github.com/noah-isme/gema-site-api/internal/repository"
	"github.com/noah-isme/gema-site-api/pkg/githubrepo"
)

// RemoteRepository is the version-controlled store that content commits land in.
type RemoteRepository interface {
	GetFile(ctx context.Context, path string) (githubrepo.File, bool, error)
	PutFile(ctx context.Context, write githubrepo.FileWrite) (githubrepo.Commit, error)
	DeleteFile(ctx context.Context, del githubrepo.FileDelete) (githubrepo.Commit, error)
	ListContributors(ctx context.Context) ([]githubrepo.Contributor, error)
	Activity(ctx context.Context, login string) (githubrepo.Activity, error)
}

// CommitOutcome is the normalised result of a commit. Remote failures are reported
// here rather than as Go errors; Kind classifies a failed outcome.
type CommitOutcome struct {
	dto.ContentCommitResponse
	Kind apperror.Kind
}

// ContentCommitService turns content mutations into single remote commits.
type ContentCommitService interface {
	Commit(ctx context.Context, req dto.ContentCommitRequest, actingAdmin string) (CommitOutcome, error)
}

type contentCommitService struct {
	remote    RemoteRepository
	audit     AuditRecorder
	validator *validator.Validate
	tracer    trace.Tracer
	logger    zerolog.Logger
}

// NewContentCommitService constructs the commit pipeline. remote may be nil when no
// repository is configured; commits then fail with an external-service outcome.
func NewContentCommitService(remote RemoteRepository, audit AuditRecorder, validate *validator.Validate, logger zerolog.Logger) ContentCommitService {
	return &contentCommitService{
		remote:    remote,
		audit:     audit,
		validator: validate,
		tracer:    otel.Tracer("github.com/noah-isme/gema-site-api/internal/service/content_commit"),
		logger:    logger.With().Str("component", "content_commit_service").Logger(),
	}
}

var filenamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

type commitPlan struct {
	path    string
	subject string
	content []byte
}

func (s *contentCommitService) Commit(ctx context.Context, req dto.ContentCommitRequest, actingAdmin string) (CommitOutcome, error) {
	if err := s.validator.Struct(req); err != nil {
		return CommitOutcome{}, err
	}
	plan, err := planCommit(req)
	if err != nil {
		return CommitOutcome{}, err
	}

	ctx, span := s.tracer.Start(ctx, "content.commit", trace.WithAttributes(
		attribute.String("content.resource", req.ResourceType),
		attribute.String("content.action", req.Action),
		attribute.String("content.path", plan.path),
	))
	defer span.End()

	outcome := s.execute(ctx, req, plan, actingAdmin)
	if outcome.Success {
		observability.ContentCommits().WithLabelValues(req.ResourceType, req.Action, "success").Inc()
		span.SetAttributes(attribute.String("content.sha", outcome.SHA))
		recordAudit(ctx, s.audit, s.logger, AuditEntry{
			Action:          models.AuditContentCommitted,
			ActingAdmin:     actingAdmin,
			TargetPrincipal: plan.path,
			Details:         commitTitle(req, plan.subject),
			Metadata: map[string]interface{}{
				"resourceType": req.ResourceType,
				"action":       req.Action,
				"path":         plan.path,
				"sha":          outcome.SHA,
			},
		})
		return outcome, nil
	}

	observability.ContentCommits().WithLabelValues(req.ResourceType, req.Action, outcome.Kind.String()).Inc()
	span.SetStatus(codes.Error, outcome.Error)
	s.logger.Warn().
		Str("path", plan.path).
		Str("action", req.Action).
		Str("kind", outcome.Kind.String()).
		Str("error", outcome.Error).
		Msg("content commit failed")
	return outcome, nil
}

func (s *contentCommitService) execute(ctx context.Context, req dto.ContentCommitRequest, plan commitPlan, actingAdmin string) CommitOutcome {
	fail := func(kind apperror.Kind, message string) CommitOutcome {
		return CommitOutcome{
			ContentCommitResponse: dto.ContentCommitResponse{Success: false, Path: plan.path, Error: message},
			Kind:                  kind,
		}
	}

	if s.remote == nil {
		return fail(apperror.KindExternalService, ErrRemoteNotConfigured.Message)
	}

	existing, found, err := s.remote.GetFile(ctx, plan.path)
	if err != nil {
		return fail(apperror.KindExternalService, fmt.Sprintf("failed to read %s: %v", plan.path, err))
	}

	message := commitMessage(req, plan.subject, actingAdmin)
	var commit githubrepo.Commit
	switch req.Action {
	case models.ActionCreate:
		if found {
			return fail(apperror.KindConflict, fmt.Sprintf("%s already exists", plan.path))
		}
		commit, err = s.remote.PutFile(ctx, githubrepo.FileWrite{Path: plan.path, Message: message, Content: plan.content})
	case models.ActionUpdate:
		if !found {
			return fail(apperror.KindNotFound, fmt.Sprintf("%s does not exist", plan.path))
		}
		commit, err = s.remote.PutFile(ctx, githubrepo.FileWrite{Path: plan.path, Message: message, Content: plan.content, SHA: existing.SHA})
	case models.ActionDelete:
		if !found {
			return fail(apperror.KindNotFound, fmt.Sprintf("%s does not exist", plan.path))
		}
		commit, err = s.remote.DeleteFile(ctx, githubrepo.FileDelete{Path: plan.path, Message: message, SHA: existing.SHA})
	}
	if err != nil {
		return fail(apperror.KindExternalService, err.Error())
	}

	return CommitOutcome{ContentCommitResponse: dto.ContentCommitResponse{
		Success: true,
		SHA:     commit.SHA,
		URL:     commit.URL,
		Path:    plan.path,
		Message: commitTitle(req, plan.subject),
	}}
}

// planCommit checks the per-resource requirements and resolves the target path and payload.
// Nothing here touches the network.
func planCommit(req dto.ContentCommitRequest) (commitPlan, error) {
	switch req.ResourceType {
	case models.ResourceBlog, models.ResourcePage:
		return planDocument(req)
	case models.ResourceData:
		return planData(req)
	default:
		return commitPlan{}, apperror.Validation("unsupported resource type", map[string]interface{}{"resourceType": "oneof"})
	}
}

func planDocument(req dto.ContentCommitRequest) (commitPlan, error) {
	if req.ResourceType == models.ResourcePage && req.Action == models.ActionDelete {
		return commitPlan{}, apperror.Validation("pages cannot be deleted through the commit pipeline", map[string]interface{}{"action": "unsupported"})
	}

	details := map[string]interface{}{}
	name, ok := normaliseFilename(req.Filename, ".mdx")
	if !ok {
		details["filename"] = "filename"
	}
	title, _ := req.Frontmatter["title"].(string)
	title = strings.TrimSpace(title)
	if title == "" {
		details["frontmatter.title"] = "required"
	}
	if req.Action != models.ActionDelete && strings.TrimSpace(req.Body) == "" {
		details["body"] = "required"
	}
	if len(details) > 0 {
		return commitPlan{}, apperror.Validation("invalid commit request", details)
	}

	dir := "content/blog"
	if req.ResourceType == models.ResourcePage {
		dir = "content/pages"
	}
	plan := commitPlan{path: dir + "/" + name + ".mdx", subject: title}
	if req.Action == models.ActionDelete {
		return plan, nil
	}

	content, err := repository.EncodeMDX(req.Frontmatter, req.Body)
	if err != nil {
		return commitPlan{}, apperror.Validation("front matter cannot be encoded", map[string]interface{}{"frontmatter": err.Error()})
	}
	plan.content = content
	return plan, nil
}

func planData(req dto.ContentCommitRequest) (commitPlan, error) {
	if req.Action == models.ActionDelete {
		return commitPlan{}, apperror.Validation("data files cannot be deleted through the commit pipeline", map[string]interface{}{"action": "unsupported"})
	}
	target, ok := dataTargets[req.DataSubtype]
	if !ok {
		return commitPlan{}, apperror.Validation("dataSubtype is required for data commits", map[string]interface{}{"dataSubtype": "required"})
	}

	body := []byte(strings.TrimSpace(req.Body))
	if len(body) == 0 {
		return commitPlan{}, apperror.Validation("body is required", map[string]interface{}{"body": "required"})
	}
	if !mimetype.Detect(body).Is("application/json") {
		return commitPlan{}, apperror.Validation("body must be JSON", map[string]interface{}{"body": "json"})
	}

	var document interface{}
	if err := json.Unmarshal(body, &document); err != nil {
		return commitPlan{}, apperror.Validation("body must be JSON", map[string]interface{}{"body": err.Error()})
	}
	if err := target.schema.Validate(document); err != nil {
		return commitPlan{}, apperror.Validation("body does not match the "+req.DataSubtype+" schema", map[string]interface{}{"body": err.Error()})
	}

	return commitPlan{path: target.path, subject: req.DataSubtype, content: append(body, '\n')}, nil
}

func normaliseFilename(filename, ext string) (string, bool) {
	name := strings.TrimSpace(filename)
	name = strings.TrimSuffix(name, ext)
	if name == "" || len(name) > 100 || !filenamePattern.MatchString(name) {
		return "", false
	}
	return name, true
}

func commitTitle(req dto.ContentCommitRequest, subject string) string {
	verb := map[string]string{
		models.ActionCreate: "Create",
		models.ActionUpdate: "Update",
		models.ActionDelete: "Delete",
	}[req.Action]
	resource := map[string]string{
		models.ResourceBlog: "blog post",
		models.ResourcePage: "page",
		models.ResourceData: "data",
	}[req.ResourceType]
	return fmt.Sprintf("%s %s: %s", verb, resource, subject)
}

func commitMessage(req dto.ContentCommitRequest, subject, actingAdmin string) string {
	var b strings.Builder
	b.WriteString(commitTitle(req, subject))
	if description := strings.TrimSpace(req.Description); description != "" {
		b.WriteString("\n\n")
		b.WriteString(description)
	}
	b.WriteString("\n\nCommitted-by: ")
	b.WriteString(models.NormalizeEmail(actingAdmin))
	return b.String()
}
