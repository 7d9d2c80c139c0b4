package service

import (
	"context"
	"fmt"
	"net/url"

	"github.com/lexcaraig/wheelbase-business/internal/dto"
	"github.com/lexcaraig/wheelbase-business/internal/entity"
	"github.com/lexcaraig/wheelbase-business/internal/pkg/logger"
	"github.com/lexcaraig/wheelbase-business/pkg/backend"
)

type IAppointmentService interface {
	ListAppointments(ctx context.Context, token, businessID, status string) ([]entity.Appointment, error)
	UpdateAppointment(ctx context.Context, token, appointmentID string, req *dto.UpdateAppointmentRequest) (*entity.Appointment, error)
}

type appointmentService struct {
	backend *backend.Client
	logger  logger.ILogger
}

func NewAppointmentService(client *backend.Client, log logger.ILogger) IAppointmentService {
	return &appointmentService{
		backend: client,
		logger:  log,
	}
}

func (s *appointmentService) ListAppointments(ctx context.Context, token, businessID, status string) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	fn := fmt.Sprintf("get-business-appointments?business_id=%s", url.QueryEscape(businessID))
	if status != "" {
		fn += "&status=" + url.QueryEscape(status)
	}
	if err := s.backend.Get(ctx, fn, token, &appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

func (s *appointmentService) UpdateAppointment(ctx context.Context, token, appointmentID string, req *dto.UpdateAppointmentRequest) (*entity.Appointment, error) {
	body := map[string]string{
		"id":     appointmentID,
		"status": req.Status,
		"notes":  req.Notes,
	}
	var appointment entity.Appointment
	if err := s.backend.CallWithAuth(ctx, "update-appointment", token, body, &appointment); err != nil {
		return nil, err
	}
	s.logger.Info("AppointmentService", "Appointment updated", map[string]interface{}{
		"appointment_id": appointmentID,
		"status":         req.Status,
	})
	return &appointment, nil
}
