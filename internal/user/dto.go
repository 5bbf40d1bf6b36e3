// AngelaMos | 2026
// dto.go

package user

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,max=128,nefield=CurrentPassword"`
}

// EmailAvailability answers the signup form's live check. Consumers and
// businesses share one email namespace.
type EmailAvailability struct {
	Email     string `json:"email"`
	Available bool   `json:"available"`
}
