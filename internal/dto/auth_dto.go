package dto

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	FullName     string `json:"full_name" validate:"required"`
	BusinessName string `json:"business_name"`
}

// ClaimInviteRequest finalizes an invite-based account: the invite token
// identifies the pre-approved claim, the user only picks a password.
type ClaimInviteRequest struct {
	InviteToken string `json:"invite_token" validate:"required"`
	Password    string `json:"password" validate:"required,min=6"`
}

type AuthResponse struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token,omitempty"`
	ExpiresIn    int64            `json:"expires_in"`
	User         UserResponse     `json:"user"`
	Business     *BusinessSummary `json:"business,omitempty"`
}

type UserResponse struct {
	Id        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type BusinessSummary struct {
	Source      string `json:"source"`
	Id          string `json:"id"`
	DisplayName string `json:"display_name"`
	Category    string `json:"category,omitempty"`
	LogoURL     string `json:"logo_url,omitempty"`
	Status      string `json:"status"`
	City        string `json:"city,omitempty"`
}
