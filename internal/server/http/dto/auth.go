package dto

// Status is the envelope every storefront endpoint answers with.
type Status struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// OK builds a successful envelope.
func OK(message string) Status {
	return Status{Success: true, Message: message}
}

// Fail builds a failed envelope.
func Fail(message string) Status {
	return Status{Success: false, Message: message}
}

// AuthRequest describes login/password payload.
type AuthRequest struct {
	Login    string `json:"login" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
}

// RegisterRequest extends AuthRequest with an optional display name.
type RegisterRequest struct {
	Login    string `json:"login" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
	Name     string `json:"name" validate:"max=128"`
}
