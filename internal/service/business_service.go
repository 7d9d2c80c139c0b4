package service

import (
	"context"
	"fmt"
	"net/url"

	"github.com/lexcaraig/wheelbase-business/internal/dto"
	"github.com/lexcaraig/wheelbase-business/internal/entity"
	"github.com/lexcaraig/wheelbase-business/internal/pkg/logger"
	"github.com/lexcaraig/wheelbase-business/pkg/backend"
	"github.com/lexcaraig/wheelbase-business/pkg/storage"
)

type IBusinessService interface {
	GetProfile(ctx context.Context, token, businessID string) (*entity.Business, error)
	UpdateProfile(ctx context.Context, token, businessID string, req *dto.UpdateProfileRequest) (*entity.Business, error)
	UploadLogo(ctx context.Context, token, businessID, filename, contentType string, data []byte) (string, error)
	UploadCover(ctx context.Context, token, businessID, filename, contentType string, data []byte) (string, error)
}

type businessService struct {
	backend   *backend.Client
	uploader  storage.Uploader
	analytics IAnalyticsService
	logger    logger.ILogger
}

func NewBusinessService(client *backend.Client, uploader storage.Uploader, analytics IAnalyticsService, log logger.ILogger) IBusinessService {
	return &businessService{
		backend:   client,
		uploader:  uploader,
		analytics: analytics,
		logger:    log,
	}
}

func (s *businessService) GetProfile(ctx context.Context, token, businessID string) (*entity.Business, error) {
	var business entity.Business
	fn := fmt.Sprintf("get-business?id=%s", url.QueryEscape(businessID))
	if err := s.backend.Get(ctx, fn, token, &business); err != nil {
		return nil, err
	}
	return &business, nil
}

func (s *businessService) UpdateProfile(ctx context.Context, token, businessID string, req *dto.UpdateProfileRequest) (*entity.Business, error) {
	var business entity.Business
	fn := fmt.Sprintf("update-business?id=%s", url.QueryEscape(businessID))
	if err := s.backend.Put(ctx, fn, token, req, &business); err != nil {
		return nil, err
	}
	s.analytics.InvalidateStats(ctx, businessID)
	s.logger.Info("BusinessService", "Profile updated", map[string]interface{}{"business_id": businessID})
	return &business, nil
}

func (s *businessService) UploadLogo(ctx context.Context, token, businessID, filename, contentType string, data []byte) (string, error) {
	return s.uploadImage(ctx, token, businessID, "logo", filename, contentType, data)
}

func (s *businessService) UploadCover(ctx context.Context, token, businessID, filename, contentType string, data []byte) (string, error) {
	return s.uploadImage(ctx, token, businessID, "cover", filename, contentType, data)
}

func (s *businessService) uploadImage(ctx context.Context, token, businessID, kind, filename, contentType string, data []byte) (string, error) {
	imageURL, err := s.uploader.Upload(ctx, token, &storage.UploadRequest{
		Folder:      fmt.Sprintf("business-images/%s/%s", businessID, kind),
		Filename:    filename,
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		return "", err
	}

	body := map[string]string{"id": businessID, "field": kind, "image_url": imageURL}
	if err := s.backend.CallWithAuth(ctx, "set-business-image", token, body, nil); err != nil {
		return "", err
	}
	return imageURL, nil
}
