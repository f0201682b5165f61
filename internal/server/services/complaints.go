package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/complaintdesk/internal/common"
	"github.com/dmitrijs2005/complaintdesk/internal/filex"
	"github.com/dmitrijs2005/complaintdesk/internal/logging"
	"github.com/dmitrijs2005/complaintdesk/internal/server/models"
	"github.com/dmitrijs2005/complaintdesk/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/complaintdesk/internal/server/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// allowedImageTypes are the content types accepted as attachments. SVG is
// left out since it can carry script.
var allowedImageTypes = []string{
	"image/png",
	"image/jpeg",
	"image/gif",
	"image/webp",
	"image/bmp",
}

// Attachment is an uploaded file. Content must be seekable so the type can
// be sniffed before the upload is stored.
type Attachment struct {
	Filename string
	Content  io.ReadSeeker
}

// ComplaintInput is the public complaint form.
type ComplaintInput struct {
	Name       string
	Email      string
	Location   string
	Message    string
	Attachment *Attachment
}

// ComplaintView is a complaint with its image link resolved for display.
type ComplaintView struct {
	models.Complaint
	ImageURL string `json:"image_url,omitempty"`
}

type ComplaintService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	storage     storage.Storage
	logger      logging.Logger
	now         func() time.Time
}

func NewComplaintService(db *sql.DB, m repomanager.RepositoryManager, st storage.Storage, logger logging.Logger) *ComplaintService {
	return &ComplaintService{
		db:          db,
		repomanager: m,
		storage:     st,
		logger:      logger.With("module", "complaints"),
		now:         time.Now,
	}
}

// Submit stores the attachment (if any) and records the complaint.
func (s *ComplaintService) Submit(ctx context.Context, in ComplaintInput) (*models.Complaint, error) {
	c := &models.Complaint{
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.TrimSpace(in.Email),
		Location: strings.TrimSpace(in.Location),
		Message:  strings.TrimSpace(in.Message),
	}
	if c.Name == "" || c.Email == "" || c.Message == "" {
		return nil, fmt.Errorf("%w: name, email and message are required", common.ErrValidation)
	}

	if in.Attachment != nil {
		path, err := s.saveAttachment(ctx, in.Attachment)
		if err != nil {
			return nil, err
		}
		c.ImagePath = path
	}

	created, err := s.repomanager.Complaints(s.db).Create(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("%w: create complaint: %w", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "complaint submitted", "complaint_id", created.ID, "has_image", created.ImagePath != "")
	return created, nil
}

func (s *ComplaintService) saveAttachment(ctx context.Context, a *Attachment) (string, error) {
	mtype, err := mimetype.DetectReader(a.Content)
	if err != nil {
		return "", fmt.Errorf("%w: sniff upload: %w", common.ErrorInternal, err)
	}
	if !isAllowedImage(mtype) {
		return "", fmt.Errorf("%w: %s", common.ErrUnsupportedMedia, mtype.String())
	}
	if _, err := a.Content.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("%w: rewind upload: %w", common.ErrorInternal, err)
	}

	path, err := s.storage.Save(ctx, s.uniqueName(a.Filename), mtype.String(), a.Content)
	if err != nil {
		return "", fmt.Errorf("%w: store upload: %w", common.ErrorInternal, err)
	}
	return path, nil
}

// uniqueName is "<unix-ms>-<uuid>-<sanitised original name>".
func (s *ComplaintService) uniqueName(original string) string {
	return fmt.Sprintf("%d-%s-%s", s.now().UnixMilli(), uuid.NewString(), filex.SanitizeName(original))
}

func isAllowedImage(m *mimetype.MIME) bool {
	for _, t := range allowedImageTypes {
		if m.Is(t) {
			return true
		}
	}
	return false
}

// List returns all complaints, newest first, with image links resolved. A
// link that cannot be resolved is logged and left empty.
func (s *ComplaintService) List(ctx context.Context) ([]ComplaintView, error) {
	items, err := s.repomanager.Complaints(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list complaints: %w", common.ErrorInternal, err)
	}

	views := make([]ComplaintView, 0, len(items))
	for _, c := range items {
		v := ComplaintView{Complaint: *c}
		if c.ImagePath != "" {
			u, err := s.storage.URL(ctx, c.ImagePath)
			if err != nil {
				s.logger.Warn(ctx, "resolve image url failed", "complaint_id", c.ID, "error", err)
			} else {
				v.ImageURL = u
			}
		}
		views = append(views, v)
	}
	return views, nil
}
