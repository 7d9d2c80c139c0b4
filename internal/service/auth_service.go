package service

import (
	"context"
	"errors"
	"strings"

	"github.com/lexcaraig/wheelbase-business/internal/dto"
	"github.com/lexcaraig/wheelbase-business/internal/entity"
	"github.com/lexcaraig/wheelbase-business/internal/pkg/logger"
	"github.com/lexcaraig/wheelbase-business/pkg/backend"
)

type IAuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	ClaimInvite(ctx context.Context, req *dto.ClaimInviteRequest) (*dto.AuthResponse, error)
	Profile(ctx context.Context, token string) (*dto.UserResponse, *dto.BusinessSummary, error)
	Logout(ctx context.Context, token string) error
}

type authService struct {
	backend *backend.Client
	logger  logger.ILogger
}

func NewAuthService(client *backend.Client, log logger.ILogger) IAuthService {
	return &authService{
		backend: client,
		logger:  log,
	}
}

// backendSession is the auth payload every identity function returns.
type backendSession struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
	User         struct {
		Id        string `json:"id"`
		Email     string `json:"email"`
		FullName  string `json:"fullName"`
		AvatarURL string `json:"avatarUrl"`
	} `json:"user"`
	Business *backendBusiness `json:"business"`
}

type backendBusiness struct {
	Source     string `json:"source"`
	Id         string `json:"id"`
	ProviderId string `json:"providerId"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	LogoURL    string `json:"logoUrl"`
	Status     string `json:"status"`
	City       string `json:"city"`
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	var session backendSession
	if err := s.backend.Call(ctx, "business-login", req, &session); err != nil {
		s.logger.Warn("AuthService", "Login failed", map[string]interface{}{"email": req.Email, "error": err.Error()})
		return nil, errors.New("invalid email or password")
	}
	return s.toAuthResponse(&session), nil
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	var session backendSession
	if err := s.backend.Call(ctx, "business-register", req, &session); err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && strings.Contains(strings.ToLower(apiErr.Message), "already") {
			return nil, errors.New("email already registered")
		}
		return nil, err
	}
	s.logger.Info("AuthService", "Business account registered", map[string]interface{}{"email": req.Email})
	return s.toAuthResponse(&session), nil
}

// ClaimInvite activates a pre-approved claim: the backend validates the
// invite token and returns a live session for the new account.
func (s *authService) ClaimInvite(ctx context.Context, req *dto.ClaimInviteRequest) (*dto.AuthResponse, error) {
	var session backendSession
	if err := s.backend.Call(ctx, "claim-invite", req, &session); err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			return nil, errors.New(apiErr.Message)
		}
		return nil, err
	}
	s.logger.Info("AuthService", "Invite claimed", map[string]interface{}{"user_id": session.User.Id})
	return s.toAuthResponse(&session), nil
}

// Profile re-fetches the caller's identity and unified business projection.
func (s *authService) Profile(ctx context.Context, token string) (*dto.UserResponse, *dto.BusinessSummary, error) {
	var session backendSession
	if err := s.backend.CallWithAuth(ctx, "get-business-profile", token, nil, &session); err != nil {
		return nil, nil, err
	}
	res := s.toAuthResponse(&session)
	return &res.User, res.Business, nil
}

// Logout revokes the session at the identity provider. The portal holds no
// server-side session of its own, so there is nothing local to tear down.
func (s *authService) Logout(ctx context.Context, token string) error {
	if err := s.backend.CallWithAuth(ctx, "business-logout", token, nil, nil); err != nil {
		s.logger.Warn("AuthService", "Logout failed", map[string]interface{}{"error": err.Error()})
		return err
	}
	return nil
}

func (s *authService) toAuthResponse(session *backendSession) *dto.AuthResponse {
	res := &dto.AuthResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresIn:    session.ExpiresIn,
		User: dto.UserResponse{
			Id:        session.User.Id,
			Email:     session.User.Email,
			FullName:  session.User.FullName,
			AvatarURL: session.User.AvatarURL,
		},
	}
	if session.Business != nil {
		res.Business = unifiedSummary(session.Business)
	}
	return res
}

// unifiedSummary folds both account shapes into the single projection the
// frontend renders. A claimed provider keeps its directory listing id.
func unifiedSummary(b *backendBusiness) *dto.BusinessSummary {
	var unified entity.UnifiedBusiness
	if b.Source == string(entity.SourceClaimedProvider) {
		unified = entity.UnifyClaimedProvider(b.ProviderId, b.Name, b.Category, b.LogoURL, b.City, entity.VerificationStatus(b.Status))
	} else {
		unified = entity.UnifyAccount(&entity.Business{
			Id:       b.Id,
			Name:     b.Name,
			Category: b.Category,
			LogoURL:  b.LogoURL,
			City:     b.City,
			Status:   entity.VerificationStatus(b.Status),
		})
	}
	return &dto.BusinessSummary{
		Source:      string(unified.Source),
		Id:          unified.Id,
		DisplayName: unified.DisplayName,
		Category:    unified.Category,
		LogoURL:     unified.LogoURL,
		Status:      string(unified.Status),
		City:        unified.City,
	}
}
