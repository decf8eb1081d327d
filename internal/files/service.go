package files

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"esquad-go/internal/activity"
	"esquad-go/internal/identity"
	"esquad-go/internal/storage"
	"esquad-go/internal/validation"
)

// createdAtLayout is fixed-width so the GSI sort key orders lexicographically.
const createdAtLayout = "2006-01-02T15:04:05.000Z"

// URLIssuer issues presigned S3 URLs. Satisfied by *storage.Presigner.
type URLIssuer interface {
	Presign(ctx context.Context, action storage.Action, key, contentType string) (string, error)
}

// Recorder appends activity log entries without blocking the request.
// Satisfied by *activity.Service.
type Recorder interface {
	RecordAsync(entry *activity.LogEntry)
}

type Service struct {
	repo         Repository
	presigner    URLIssuer
	recorder     Recorder
	defaultLimit int32
	maxLimit     int32
	now          func() time.Time
}

func NewService(repo Repository, presigner URLIssuer, recorder Recorder, defaultLimit, maxLimit int32) *Service {
	return &Service{
		repo:         repo,
		presigner:    presigner,
		recorder:     recorder,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		now:          time.Now,
	}
}

// Upload registers a new file: derives the key, issues the PUT URL the client
// will push the object through, and stores the metadata row. Uniqueness of
// the key rests on the millisecond timestamp prefix.
func (s *Service) Upload(ctx context.Context, req *UploadRequest) (*UploadResponse, error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}

	name := storage.DecodeKey(req.OriginalFileName)
	fileKey := fmt.Sprintf("files/%d-%s", s.now().UnixMilli(), name)

	url, err := s.presigner.Presign(ctx, storage.ActionPut, fileKey, req.ContentType)
	if err != nil {
		return nil, fmt.Errorf("issuing upload URL: %w", err)
	}

	createdAt := req.CreatedAt
	if createdAt == "" {
		createdAt = s.now().UTC().Format(createdAtLayout)
	}

	meta := &FileMetadata{
		FileKey:          fileKey,
		TargetID:         req.TargetID,
		TargetType:       req.TargetType,
		UserEmail:        req.UserEmail,
		UserNickname:     req.UserNickname,
		FileSize:         req.FileSize,
		Extension:        strings.TrimPrefix(filepath.Ext(name), "."),
		ContentType:      req.ContentType,
		OriginalFileName: name,
		CreatedAt:        createdAt,
		DownloadCount:    0,
	}
	if err := s.repo.Create(ctx, meta); err != nil {
		return nil, fmt.Errorf("storing upload metadata: %w", err)
	}

	return &UploadResponse{PresignedURL: url, FileKey: fileKey}, nil
}

// Download returns a GET URL for an existing file, bumps its download count
// and records a DOWNLOAD log entry. The log write is fire-and-forget.
func (s *Service) Download(ctx context.Context, fileKey string, caller identity.RequestIdentity) (string, error) {
	fileKey = storage.DecodeKey(fileKey)

	meta, err := s.repo.Get(ctx, fileKey)
	if err != nil {
		return "", err
	}

	url, err := s.presigner.Presign(ctx, storage.ActionGet, fileKey, meta.ContentType)
	if err != nil {
		return "", fmt.Errorf("issuing download URL: %w", err)
	}

	if _, err := s.repo.IncrementDownloadCount(ctx, fileKey); err != nil {
		return "", fmt.Errorf("counting download: %w", err)
	}

	s.recorder.RecordAsync(s.logEntry(activity.ActionDownload, meta, caller))

	return url, nil
}

// Delete removes the metadata row and returns a DELETE URL for the object.
// The actual S3 removal is the caller's step: the row is gone even if the
// returned URL is never invoked. The conditional repository delete makes one
// winner of racing deletes; the loser sees ErrNotFound.
func (s *Service) Delete(ctx context.Context, fileKey string, caller identity.RequestIdentity) (string, error) {
	fileKey = storage.DecodeKey(fileKey)

	meta, err := s.repo.Get(ctx, fileKey)
	if err != nil {
		return "", err
	}

	if err := s.repo.Delete(ctx, fileKey); err != nil {
		return "", err
	}

	url, err := s.presigner.Presign(ctx, storage.ActionDelete, fileKey, "")
	if err != nil {
		return "", fmt.Errorf("issuing delete URL: %w", err)
	}

	s.recorder.RecordAsync(s.logEntry(activity.ActionDelete, meta, caller))

	return url, nil
}

// Preview issues a GET URL without touching metadata or logs.
func (s *Service) Preview(ctx context.Context, fileKey, contentType string) (string, error) {
	return s.presigner.Presign(ctx, storage.ActionGet, storage.DecodeKey(fileKey), contentType)
}

// StoreMetadata writes a caller-supplied metadata row as-is.
func (s *Service) StoreMetadata(ctx context.Context, meta *FileMetadata) (*FileMetadata, error) {
	if err := validation.ValidateFileKey(meta.FileKey); err != nil {
		return nil, err
	}
	if meta.CreatedAt == "" {
		meta.CreatedAt = s.now().UTC().Format(createdAtLayout)
	}
	if err := s.repo.Create(ctx, meta); err != nil {
		return nil, fmt.Errorf("storing metadata: %w", err)
	}
	return meta, nil
}

// ListByTarget returns one page of a target's files, newest first.
func (s *Service) ListByTarget(ctx context.Context, q TargetQuery) (*Page, error) {
	if q.TargetID == "" {
		return nil, ErrMissingTarget
	}

	if q.Limit <= 0 {
		q.Limit = s.defaultLimit
	} else if q.Limit > s.maxLimit {
		q.Limit = s.maxLimit
	}

	items, lastKey, err := s.repo.ListByTarget(ctx, q)
	if err != nil {
		return nil, err
	}

	token, err := encodePageKey(lastKey)
	if err != nil {
		return nil, err
	}
	return &Page{Items: items, LastEvaluatedKey: token}, nil
}

// ListByUser returns every file a user has uploaded.
func (s *Service) ListByUser(ctx context.Context, userEmail string) ([]*FileMetadata, error) {
	return s.repo.ListByUser(ctx, userEmail)
}

// ListAll returns the full metadata table.
func (s *Service) ListAll(ctx context.Context) ([]*FileMetadata, error) {
	return s.repo.ListAll(ctx)
}

// UsageStats summarizes a user's stored files.
func (s *Service) UsageStats(ctx context.Context, userEmail string) (*UsageStats, error) {
	items, err := s.repo.ListByUser(ctx, userEmail)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, item := range items {
		total += item.FileSize
	}
	return &UsageStats{
		TotalFiles:    len(items),
		TotalSize:     total,
		TotalSizeText: humanize.Bytes(uint64(total)),
	}, nil
}

func (s *Service) logEntry(action string, meta *FileMetadata, caller identity.RequestIdentity) *activity.LogEntry {
	return &activity.LogEntry{
		Action:           action,
		FileKey:          meta.FileKey,
		OriginalFileName: meta.OriginalFileName,
		UploaderEmail:    meta.UserEmail,
		UserEmail:        caller.Email,
		UserRole:         caller.Role,
		FileSize:         meta.FileSize,
		TargetID:         meta.TargetID,
		TargetType:       meta.TargetType,
		IPAddress:        caller.IPAddress,
		UserAgent:        caller.UserAgent,
	}
}
