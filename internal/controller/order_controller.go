package controller

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lexcaraig/wheelbase-business/internal/dto"
	"github.com/lexcaraig/wheelbase-business/internal/pkg/serverutils"
	"github.com/lexcaraig/wheelbase-business/internal/service"
)

type IOrderController interface {
	RegisterRoutes(r fiber.Router)
}

type orderController struct {
	service service.IOrderService
	auth    service.IAuthService
}

func NewOrderController(service service.IOrderService, auth service.IAuthService) IOrderController {
	return &orderController{service: service, auth: auth}
}

func (c *orderController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/order/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.ListOrders)
	h.Get("/payment-settings", c.GetPaymentSettings)
	h.Put("/payment-settings", c.UpdatePaymentSettings)
	h.Get("/:id", c.GetOrder)
	h.Put("/:id/status", c.UpdateStatus)
	h.Post("/:id/verify-payment", c.VerifyPayment)
}

func (c *orderController) ListOrders(ctx *fiber.Ctx) error {
	token := serverutils.AccessToken(ctx)
	businessID := ctx.Query("business_id")
	if businessID == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "business_id is required"))
	}

	orders, err := c.service.ListOrders(ctx.Context(), token, businessID, ctx.Query("status"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Orders", orders))
}

func (c *orderController) GetOrder(ctx *fiber.Ctx) error {
	token := serverutils.AccessToken(ctx)

	order, err := c.service.GetOrder(ctx.Context(), token, ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Order details", order))
}

func (c *orderController) UpdateStatus(ctx *fiber.Ctx) error {
	userID := serverutils.UserID(ctx)
	token := serverutils.AccessToken(ctx)

	var req dto.UpdateOrderStatusRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	order, err := c.service.UpdateStatus(ctx.Context(), token, ctx.Params("id"), userID, resolveSenderName(ctx, c.auth), &req)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Order status updated", order))
}

func (c *orderController) VerifyPayment(ctx *fiber.Ctx) error {
	userID := serverutils.UserID(ctx)
	token := serverutils.AccessToken(ctx)

	order, err := c.service.VerifyPayment(ctx.Context(), token, ctx.Params("id"), userID, resolveSenderName(ctx, c.auth))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Payment verified", order))
}

func (c *orderController) GetPaymentSettings(ctx *fiber.Ctx) error {
	token := serverutils.AccessToken(ctx)
	businessID := ctx.Query("business_id")
	if businessID == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "business_id is required"))
	}

	settings, err := c.service.GetPaymentSettings(ctx.Context(), token, businessID)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Payment settings", settings))
}

func (c *orderController) UpdatePaymentSettings(ctx *fiber.Ctx) error {
	token := serverutils.AccessToken(ctx)
	businessID := ctx.Query("business_id")
	if businessID == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "business_id is required"))
	}

	var req dto.UpdatePaymentSettingsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	settings, err := c.service.UpdatePaymentSettings(ctx.Context(), token, businessID, &req)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Payment settings updated", settings))
}
