package controller

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lexcaraig/wheelbase-business/internal/dto"
	"github.com/lexcaraig/wheelbase-business/internal/pkg/serverutils"
	"github.com/lexcaraig/wheelbase-business/internal/service"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
}

type chatController struct {
	service service.IChatService
	auth    service.IAuthService
}

func NewChatController(service service.IChatService, auth service.IAuthService) IChatController {
	return &chatController{service: service, auth: auth}
}

// resolveSenderName derives the display name shown on outgoing messages from
// the caller's unified business profile. Never taken from the request body,
// so a client cannot impersonate another sender.
func resolveSenderName(ctx *fiber.Ctx, auth service.IAuthService) string {
	user, business, err := auth.Profile(ctx.Context(), serverutils.AccessToken(ctx))
	if err != nil {
		return ""
	}
	if business != nil && business.DisplayName != "" {
		return business.DisplayName
	}
	if user != nil {
		return user.FullName
	}
	return ""
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("/conversations", c.ListConversations)
	h.Post("/conversations/:id/messages", c.SendMessage)
	h.Post("/conversations/:id/status-update", c.SendStatusUpdate)
	h.Post("/conversations/:id/payment-request", c.SendPaymentRequest)
}

func (c *chatController) ListConversations(ctx *fiber.Ctx) error {
	token := serverutils.AccessToken(ctx)
	businessID := ctx.Query("business_id")
	if businessID == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "business_id is required"))
	}

	conversations, err := c.service.ListConversations(ctx.Context(), token, businessID)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Conversations", conversations))
}

func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	userID := serverutils.UserID(ctx)
	token := serverutils.AccessToken(ctx)
	conversationID := ctx.Params("id")

	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := c.service.SendMessage(ctx.Context(), token, conversationID, userID, resolveSenderName(ctx, c.auth), &req)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Message sent", nil))
}

func (c *chatController) SendStatusUpdate(ctx *fiber.Ctx) error {
	userID := serverutils.UserID(ctx)
	token := serverutils.AccessToken(ctx)
	conversationID := ctx.Params("id")

	var req dto.SendStatusUpdateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	err := c.service.SendStatusUpdate(ctx.Context(), token, conversationID, userID, resolveSenderName(ctx, c.auth), &req)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Status update sent", nil))
}

func (c *chatController) SendPaymentRequest(ctx *fiber.Ctx) error {
	userID := serverutils.UserID(ctx)
	token := serverutils.AccessToken(ctx)
	conversationID := ctx.Params("id")

	var req dto.SendPaymentRequestRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	err := c.service.SendPaymentRequest(ctx.Context(), token, conversationID, userID, resolveSenderName(ctx, c.auth), &req)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Payment request sent", nil))
}
