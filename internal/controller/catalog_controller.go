package controller

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/lexcaraig/wheelbase-business/internal/dto"
	"github.com/lexcaraig/wheelbase-business/internal/pkg/serverutils"
	"github.com/lexcaraig/wheelbase-business/internal/service"
)

type ICatalogController interface {
	RegisterRoutes(r fiber.Router)
}

type catalogController struct {
	service service.ICatalogService
}

func NewCatalogController(service service.ICatalogService) ICatalogController {
	return &catalogController{service: service}
}

func (c *catalogController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/catalog/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("/products", c.ListProducts)
	h.Post("/products", c.CreateProduct)
	h.Put("/products/:id", c.UpdateProduct)
	h.Delete("/products/:id", c.DeleteProduct)
	h.Post("/products/:id/image", c.UploadProductImage)
	h.Get("/services", c.ListServices)
	h.Post("/services", c.CreateService)
	h.Delete("/services/:id", c.DeleteService)
}

func (c *catalogController) ListProducts(ctx *fiber.Ctx) error {
	token := serverutils.AccessToken(ctx)
	businessID := ctx.Query("business_id")
	if businessID == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "business_id is required"))
	}

	products, err := c.service.ListProducts(ctx.Context(), token, businessID)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Products", products))
}

func (c *catalogController) CreateProduct(ctx *fiber.Ctx) error {
	token := serverutils.AccessToken(ctx)
	businessID := ctx.Query("business_id")

	var req dto.CreateProductRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	product, err := c.service.CreateProduct(ctx.Context(), token, businessID, &req)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Product created", product))
}

func (c *catalogController) UpdateProduct(ctx *fiber.Ctx) error {
	token := serverutils.AccessToken(ctx)

	var req dto.UpdateProductRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	product, err := c.service.UpdateProduct(ctx.Context(), token, ctx.Params("id"), &req)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Product updated", product))
}

func (c *catalogController) DeleteProduct(ctx *fiber.Ctx) error {
	token := serverutils.AccessToken(ctx)

	if err := c.service.DeleteProduct(ctx.Context(), token, ctx.Params("id")); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Product deleted", nil))
}

func (c *catalogController) UploadProductImage(ctx *fiber.Ctx) error {
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

	imageURL, err := c.service.UploadProductImage(ctx.Context(), token, ctx.Params("id"), fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Image uploaded", map[string]string{"url": imageURL}))
}

func (c *catalogController) ListServices(ctx *fiber.Ctx) error {
	token := serverutils.AccessToken(ctx)
	businessID := ctx.Query("business_id")
	if businessID == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "business_id is required"))
	}

	services, err := c.service.ListServices(ctx.Context(), token, businessID)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Services", services))
}

func (c *catalogController) CreateService(ctx *fiber.Ctx) error {
	token := serverutils.AccessToken(ctx)
	businessID := ctx.Query("business_id")

	var req dto.CreateServiceRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	svc, err := c.service.CreateService(ctx.Context(), token, businessID, &req)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Service created", svc))
}

func (c *catalogController) DeleteService(ctx *fiber.Ctx) error {
	token := serverutils.AccessToken(ctx)

	if err := c.service.DeleteService(ctx.Context(), token, ctx.Params("id")); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Service deleted", nil))
}
