package controller

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lexcaraig/wheelbase-business/internal/dto"
	"github.com/lexcaraig/wheelbase-business/internal/pkg/serverutils"
	"github.com/lexcaraig/wheelbase-business/internal/service"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	Login(ctx *fiber.Ctx) error
	Register(ctx *fiber.Ctx) error
	ClaimInvite(ctx *fiber.Ctx) error
	Profile(ctx *fiber.Ctx) error
	Logout(ctx *fiber.Ctx) error
}

type authController struct {
	service service.IAuthService
}

func NewAuthController(service service.IAuthService) IAuthController {
	return &authController{service: service}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth/v1")
	h.Post("/login", c.Login)
	h.Post("/register", c.Register)
	h.Post("/claim-invite", c.ClaimInvite)

	protected := h.Group("")
	protected.Use(serverutils.JwtMiddleware)
	protected.Get("/profile", c.Profile)
	protected.Post("/logout", c.Logout)
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.service.Login(ctx.Context(), &req)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Login successful", res))
}

func (c *authController) Register(ctx *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.service.Register(ctx.Context(), &req)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Account created", res))
}

func (c *authController) ClaimInvite(ctx *fiber.Ctx) error {
	var req dto.ClaimInviteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.service.ClaimInvite(ctx.Context(), &req)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Invite claimed", res))
}

func (c *authController) Profile(ctx *fiber.Ctx) error {
	token := serverutils.AccessToken(ctx)

	user, business, err := c.service.Profile(ctx.Context(), token)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("User profile", fiber.Map{
		"user":     user,
		"business": business,
	}))
}

func (c *authController) Logout(ctx *fiber.Ctx) error {
	token := serverutils.AccessToken(ctx)

	if err := c.service.Logout(ctx.Context(), token); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Logged out", nil))
}
