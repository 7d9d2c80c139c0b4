package controller

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/lexcaraig/wheelbase-business/internal/dto"
	"github.com/lexcaraig/wheelbase-business/internal/pkg/serverutils"
	"github.com/lexcaraig/wheelbase-business/internal/service"
)

type IClaimController interface {
	RegisterRoutes(r fiber.Router)
}

type claimController struct {
	service service.IClaimService
}

func NewClaimController(service service.IClaimService) IClaimController {
	return &claimController{service: service}
}

func (c *claimController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/claim/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/start", c.Start)
	h.Post("/add-new", c.StartAddNew)
	h.Get("/search", c.Search)
	h.Put("/draft", c.SetDraft)
	h.Put("/claimant", c.SetClaimant)
	h.Put("/consent", c.SetConsent)
	h.Post("/documents/:slot", c.UploadDocument)
	h.Delete("/documents/:slot", c.ClearDocument)
	h.Post("/advance", c.Advance)
	h.Post("/retreat", c.Retreat)
	h.Get("/state", c.State)
	h.Delete("/session", c.Abandon)
}

func (c *claimController) Start(ctx *fiber.Ctx) error {
	userID := serverutils.UserID(ctx)
	token := serverutils.AccessToken(ctx)

	var req dto.StartClaimRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	state, err := c.service.Start(ctx.Context(), userID, token, req.ProviderId)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Claim started", state))
}

func (c *claimController) StartAddNew(ctx *fiber.Ctx) error {
	userID := serverutils.UserID(ctx)
	token := serverutils.AccessToken(ctx)

	state, err := c.service.StartAddNew(ctx.Context(), userID, token)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("New listing flow started", state))
}

func (c *claimController) Search(ctx *fiber.Ctx) error {
	userID := serverutils.UserID(ctx)
	token := serverutils.AccessToken(ctx)
	query := ctx.Query("query")

	results, err := c.service.Search(ctx.Context(), userID, token, query)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Search results", results))
}

func (c *claimController) SetDraft(ctx *fiber.Ctx) error {
	userID := serverutils.UserID(ctx)

	var req dto.NewListingRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	state, err := c.service.SetDraft(ctx.Context(), userID, &req)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Draft updated", state))
}

func (c *claimController) SetClaimant(ctx *fiber.Ctx) error {
	userID := serverutils.UserID(ctx)

	var req dto.ClaimantRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	state, err := c.service.SetClaimant(ctx.Context(), userID, &req)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Claimant details updated", state))
}

func (c *claimController) SetConsent(ctx *fiber.Ctx) error {
	userID := serverutils.UserID(ctx)

	var req dto.ConsentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	state, err := c.service.SetConsent(ctx.Context(), userID, &req)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Consent updated", state))
}

func (c *claimController) UploadDocument(ctx *fiber.Ctx) error {
	userID := serverutils.UserID(ctx)
	slot := ctx.Params("slot")

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Document file is required"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Failed to read document file"))
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Failed to read document file"))
	}

	contentType := fileHeader.Header.Get("Content-Type")
	state, err := c.service.UploadDocument(ctx.Context(), userID, slot, fileHeader.Filename, contentType, data)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Document processed", state))
}

func (c *claimController) ClearDocument(ctx *fiber.Ctx) error {
	userID := serverutils.UserID(ctx)

	state, err := c.service.ClearDocument(ctx.Context(), userID, ctx.Params("slot"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Document removed", state))
}

func (c *claimController) Advance(ctx *fiber.Ctx) error {
	userID := serverutils.UserID(ctx)

	state, err := c.service.Advance(ctx.Context(), userID)
	if err != nil {
		if state != nil {
			return ctx.Status(fiber.StatusUnprocessableEntity).JSON(serverutils.ErrorResponse(422, err.Error()))
		}
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Step advanced", state))
}

func (c *claimController) Retreat(ctx *fiber.Ctx) error {
	userID := serverutils.UserID(ctx)

	state, err := c.service.Retreat(ctx.Context(), userID)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Step retreated", state))
}

func (c *claimController) State(ctx *fiber.Ctx) error {
	userID := serverutils.UserID(ctx)

	state, err := c.service.State(ctx.Context(), userID)
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Wizard state", state))
}

func (c *claimController) Abandon(ctx *fiber.Ctx) error {
	userID := serverutils.UserID(ctx)
	c.service.Abandon(ctx.Context(), userID)
	return ctx.JSON(serverutils.SuccessResponse[any]("Wizard discarded", nil))
}
