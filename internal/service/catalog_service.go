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

type ICatalogService interface {
	ListProducts(ctx context.Context, token, businessID string) ([]entity.Product, error)
	CreateProduct(ctx context.Context, token, businessID string, req *dto.CreateProductRequest) (*entity.Product, error)
	UpdateProduct(ctx context.Context, token, productID string, req *dto.UpdateProductRequest) (*entity.Product, error)
	DeleteProduct(ctx context.Context, token, productID string) error
	UploadProductImage(ctx context.Context, token, productID, filename, contentType string, data []byte) (string, error)
	ListServices(ctx context.Context, token, businessID string) ([]entity.Service, error)
	CreateService(ctx context.Context, token, businessID string, req *dto.CreateServiceRequest) (*entity.Service, error)
	DeleteService(ctx context.Context, token, serviceID string) error
}

type catalogService struct {
	backend  *backend.Client
	uploader storage.Uploader
	logger   logger.ILogger
}

func NewCatalogService(client *backend.Client, uploader storage.Uploader, log logger.ILogger) ICatalogService {
	return &catalogService{
		backend:  client,
		uploader: uploader,
		logger:   log,
	}
}

func (s *catalogService) ListProducts(ctx context.Context, token, businessID string) ([]entity.Product, error) {
	var products []entity.Product
	fn := fmt.Sprintf("get-business-products?business_id=%s", url.QueryEscape(businessID))
	if err := s.backend.Get(ctx, fn, token, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, token, businessID string, req *dto.CreateProductRequest) (*entity.Product, error) {
	body := map[string]interface{}{
		"business_id": businessID,
		"name":        req.Name,
		"description": req.Description,
		"category":    req.Category,
		"price_cents": req.PriceCents,
		"currency":    req.Currency,
		"stock":       req.Stock,
	}
	var product entity.Product
	if err := s.backend.CallWithAuth(ctx, "create-product", token, body, &product); err != nil {
		return nil, err
	}
	s.logger.Info("CatalogService", "Product created", map[string]interface{}{"product_id": product.Id, "business_id": businessID})
	return &product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, token, productID string, req *dto.UpdateProductRequest) (*entity.Product, error) {
	var product entity.Product
	fn := fmt.Sprintf("update-product?id=%s", url.QueryEscape(productID))
	if err := s.backend.Put(ctx, fn, token, req, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, token, productID string) error {
	body := map[string]string{"id": productID}
	return s.backend.CallWithAuth(ctx, "delete-product", token, body, nil)
}

func (s *catalogService) UploadProductImage(ctx context.Context, token, productID, filename, contentType string, data []byte) (string, error) {
	imageURL, err := s.uploader.Upload(ctx, token, &storage.UploadRequest{
		Folder:      fmt.Sprintf("product-images/%s", productID),
		Filename:    filename,
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		return "", err
	}

	body := map[string]string{"id": productID, "image_url": imageURL}
	if err := s.backend.CallWithAuth(ctx, "add-product-image", token, body, nil); err != nil {
		return "", err
	}
	return imageURL, nil
}

func (s *catalogService) ListServices(ctx context.Context, token, businessID string) ([]entity.Service, error) {
	var services []entity.Service
	fn := fmt.Sprintf("get-business-services?business_id=%s", url.QueryEscape(businessID))
	if err := s.backend.Get(ctx, fn, token, &services); err != nil {
		return nil, err
	}
	return services, nil
}

func (s *catalogService) CreateService(ctx context.Context, token, businessID string, req *dto.CreateServiceRequest) (*entity.Service, error) {
	body := map[string]interface{}{
		"business_id":   businessID,
		"name":          req.Name,
		"description":   req.Description,
		"price_cents":   req.PriceCents,
		"currency":      req.Currency,
		"duration_mins": req.DurationMins,
	}
	var svc entity.Service
	if err := s.backend.CallWithAuth(ctx, "create-service", token, body, &svc); err != nil {
		return nil, err
	}
	return &svc, nil
}

func (s *catalogService) DeleteService(ctx context.Context, token, serviceID string) error {
	body := map[string]string{"id": serviceID}
	return s.backend.CallWithAuth(ctx, "delete-service", token, body, nil)
}
