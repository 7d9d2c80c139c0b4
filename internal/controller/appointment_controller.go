package controller

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lexcaraig/wheelbase-business/internal/dto"
	"github.com/lexcaraig/wheelbase-business/internal/pkg/serverutils"
	"github.com/lexcaraig/wheelbase-business/internal/service"
)

type IAppointmentController interface {
	RegisterRoutes(r fiber.Router)
}

type appointmentController struct {
	service service.IAppointmentService
}

func NewAppointmentController(service service.IAppointmentService) IAppointmentController {
	return &appointmentController{service: service}
}

func (c *appointmentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/appointment/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.ListAppointments)
	h.Put("/:id", c.UpdateAppointment)
}

func (c *appointmentController) ListAppointments(ctx *fiber.Ctx) error {
	token := serverutils.AccessToken(ctx)
	businessID := ctx.Query("business_id")
	if businessID == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "business_id is required"))
	}

	appointments, err := c.service.ListAppointments(ctx.Context(), token, businessID, ctx.Query("status"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Appointments", appointments))
}

func (c *appointmentController) UpdateAppointment(ctx *fiber.Ctx) error {
	token := serverutils.AccessToken(ctx)

	var req dto.UpdateAppointmentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	appointment, err := c.service.UpdateAppointment(ctx.Context(), token, ctx.Params("id"), &req)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Appointment updated", appointment))
}
