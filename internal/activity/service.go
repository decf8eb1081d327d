package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"esquad-go/internal/validation"
)

// createdAtLayout is fixed-width so stored timestamps sort lexicographically.
const createdAtLayout = "2006-01-02T15:04:05.000Z"

// GeoResolver maps an IP address to a country code. Satisfied by
// identity.GeoIPService.
type GeoResolver interface {
	Country(ipAddr string) string
}

type Service struct {
	repo  Repository
	geoIP GeoResolver
	now   func() time.Time
}

func NewService(repo Repository, geoIP GeoResolver) *Service {
	return &Service{
		repo:  repo,
		geoIP: geoIP,
		now:   time.Now,
	}
}

// recordInput is validated before an entry is written.
type recordInput struct {
	Action    string `validate:"required,logaction"`
	FileKey   string `validate:"required"`
	UserEmail string `validate:"required"`
}

// Record assigns the entry an ID and timestamp, enriches it with a GeoIP
// country when available, and appends it to the log table.
func (s *Service) Record(ctx context.Context, entry *LogEntry) error {
	in := recordInput{
		Action:    entry.Action,
		FileKey:   entry.FileKey,
		UserEmail: entry.UserEmail,
	}
	if err := validation.Validate(in); err != nil {
		return fmt.Errorf("%w: %v", ErrMissingField, err)
	}

	entry.LogID = uuid.New().String()
	entry.CreatedAt = s.now().UTC().Format(createdAtLayout)
	if s.geoIP != nil && entry.IPAddress != "" {
		entry.CountryCode = s.geoIP.Country(entry.IPAddress)
	}

	return s.repo.Append(ctx, entry)
}

// RecordAsync writes the entry on a separate goroutine. Failures are logged
// and never surface to the request that triggered the event; the log is a
// best-effort audit trail, not part of the response contract.
func (s *Service) RecordAsync(entry *LogEntry) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.Record(ctx, entry); err != nil {
			log.Error().
				Err(err).
				Str("action", entry.Action).
				Str("file_key", entry.FileKey).
				Msg("failed to record activity log entry")
		}
	}()
}

// ListByAction returns entries for one action, newest first.
func (s *Service) ListByAction(ctx context.Context, action string) ([]*LogEntry, error) {
	if err := validation.ValidateLogAction(action); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}
	return s.repo.ListByAction(ctx, action)
}

// ListDeletesByUploader returns DELETE entries for files the given user
// uploaded.
func (s *Service) ListDeletesByUploader(ctx context.Context, uploaderEmail string) ([]*LogEntry, error) {
	if uploaderEmail == "" {
		return nil, ErrMissingField
	}
	return s.repo.ListDeletesByUploader(ctx, uploaderEmail)
}

// ListDownloadsByUser returns DOWNLOAD entries performed by the given user.
func (s *Service) ListDownloadsByUser(ctx context.Context, userEmail string) ([]*LogEntry, error) {
	if userEmail == "" {
		return nil, ErrMissingField
	}
	return s.repo.ListDownloadsByUser(ctx, userEmail)
}

// DeleteLog removes one entry by ID.
func (s *Service) DeleteLog(ctx context.Context, logID string) error {
	if logID == "" {
		return ErrMissingField
	}
	return s.repo.Delete(ctx, logID)
}
