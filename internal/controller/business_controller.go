package controller

import (
	"context"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/lexcaraig/wheelbase-business/internal/dto"
	"github.com/lexcaraig/wheelbase-business/internal/pkg/serverutils"
	"github.com/lexcaraig/wheelbase-business/internal/service"
)

type IBusinessController interface {
	RegisterRoutes(r fiber.Router)
}

type businessController struct {
	service   service.IBusinessService
	analytics service.IAnalyticsService
}

func NewBusinessController(svc service.IBusinessService, analytics service.IAnalyticsService) IBusinessController {
	return &businessController{service: svc, analytics: analytics}
}

func (c *businessController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/business/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("/:id", c.GetProfile)
	h.Put("/:id", c.UpdateProfile)
	h.Post("/:id/logo", c.UploadLogo)
	h.Post("/:id/cover", c.UploadCover)
	h.Get("/:id/stats", c.DashboardStats)
	h.Get("/:id/trends", c.Trends)
}

func (c *businessController) GetProfile(ctx *fiber.Ctx) error {
	token := serverutils.AccessToken(ctx)

	business, err := c.service.GetProfile(ctx.Context(), token, ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Business profile", business))
}

func (c *businessController) UpdateProfile(ctx *fiber.Ctx) error {
	token := serverutils.AccessToken(ctx)

	var req dto.UpdateProfileRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	business, err := c.service.UpdateProfile(ctx.Context(), token, ctx.Params("id"), &req)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Profile updated", business))
}

type imageUploadFunc func(ctx context.Context, token, businessID, filename, contentType string, data []byte) (string, error)

func (c *businessController) UploadLogo(ctx *fiber.Ctx) error {
	return c.uploadImage(ctx, c.service.UploadLogo)
}

func (c *businessController) UploadCover(ctx *fiber.Ctx) error {
	return c.uploadImage(ctx, c.service.UploadCover)
}

func (c *businessController) uploadImage(ctx *fiber.Ctx, upload imageUploadFunc) error {
	token := serverutils.AccessToken(ctx)

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Image file is required"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Failed to read image file"))
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Failed to read image file"))
	}

	imageURL, err := upload(ctx.Context(), token, ctx.Params("id"), fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Image uploaded", map[string]string{"url": imageURL}))
}

func (c *businessController) DashboardStats(ctx *fiber.Ctx) error {
	token := serverutils.AccessToken(ctx)

	stats, err := c.analytics.DashboardStats(ctx.Context(), token, ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Dashboard stats", stats))
}

func (c *businessController) Trends(ctx *fiber.Ctx) error {
	token := serverutils.AccessToken(ctx)

	points, err := c.analytics.Trends(ctx.Context(), token, ctx.Params("id"), ctx.Query("group_by"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Analytics trends", points))
}
