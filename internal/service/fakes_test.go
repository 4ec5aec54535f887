package service

import (
	"context"
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-site-api/internal/models"
	"github.com/noah-isme/gema-site-api/pkg/githubrepo"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

type memoryAuditRecorder struct {
	mu      sync.Mutex
	entries []AuditEntry
	err     error
}

func (m *memoryAuditRecorder) Record(ctx context.Context, entry AuditEntry) (models.AuditRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return models.AuditRecord{}, m.err
	}
	m.entries = append(m.entries, entry)
	return models.AuditRecord{Action: entry.Action, ActingAdmin: entry.ActingAdmin, TargetPrincipal: entry.TargetPrincipal}, nil
}

func (m *memoryAuditRecorder) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

type fakeRemote struct {
	files        map[string]githubrepo.File
	writes       []githubrepo.FileWrite
	deletes      []githubrepo.FileDelete
	contributors []githubrepo.Contributor
	activity     map[string]githubrepo.Activity
	calls        int
	getErr       error
	putErr       error
	listErr      error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{files: map[string]githubrepo.File{}, activity: map[string]githubrepo.Activity{}}
}

func (f *fakeRemote) GetFile(ctx context.Context, path string) (githubrepo.File, bool, error) {
	f.calls++
	if f.getErr != nil {
		return githubrepo.File{}, false, f.getErr
	}
	file, ok := f.files[path]
	return file, ok, nil
}

func (f *fakeRemote) PutFile(ctx context.Context, write githubrepo.FileWrite) (githubrepo.Commit, error) {
	f.calls++
	if f.putErr != nil {
		return githubrepo.Commit{}, f.putErr
	}
	f.writes = append(f.writes, write)
	f.files[write.Path] = githubrepo.File{Path: write.Path, SHA: "sha-" + write.Path, Content: write.Content}
	return githubrepo.Commit{SHA: "commit-sha", URL: "https://github.com/acme/site/commit/commit-sha"}, nil
}

func (f *fakeRemote) DeleteFile(ctx context.Context, del githubrepo.FileDelete) (githubrepo.Commit, error) {
	f.calls++
	f.deletes = append(f.deletes, del)
	delete(f.files, del.Path)
	return githubrepo.Commit{SHA: "delete-sha"}, nil
}

func (f *fakeRemote) ListContributors(ctx context.Context) ([]githubrepo.Contributor, error) {
	f.calls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.contributors, nil
}

func (f *fakeRemote) Activity(ctx context.Context, login string) (githubrepo.Activity, error) {
	activity, ok := f.activity[login]
	if !ok {
		return githubrepo.Activity{}, errors.New("no activity")
	}
	return activity, nil
}
