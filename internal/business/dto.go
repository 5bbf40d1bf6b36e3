// AngelaMos | 2026
// dto.go

package business

import (
	"bytes"
	"encoding/json"
	"time"
)

type SignupRequest struct {
	Email                string  `json:"email"                 validate:"required,email,max=255"`
	Password             string  `json:"password"              validate:"required,min=8,max=128"`
	Username             string  `json:"username"              validate:"required,min=1,max=50"`
	LicenseNumber        string  `json:"license_number"        validate:"required,max=50"`
	StallName            *string `json:"stall_name"            validate:"omitempty,maxrunes=100"`
	LicenseeName         string  `json:"licensee_name"         validate:"required,max=200"`
	EstablishmentAddress string  `json:"establishment_address" validate:"required,max=300"`
	HawkerCentre         string  `json:"hawker_centre"         validate:"required,max=200"`
	PostalCode           string  `json:"postal_code"           validate:"required,numeric,len=6"`
	Description          string  `json:"description"           validate:"maxwords=100"`
}

func (r SignupRequest) toInput() CreateInput {
	return CreateInput{
		Email:                r.Email,
		Password:             r.Password,
		Username:             r.Username,
		LicenseNumber:        r.LicenseNumber,
		StallName:            r.StallName,
		LicenseeName:         r.LicenseeName,
		EstablishmentAddress: r.EstablishmentAddress,
		HawkerCentre:         r.HawkerCentre,
		PostalCode:           r.PostalCode,
		Description:          r.Description,
	}
}

// UpdateProfileRequest is the JSON form of a profile patch; Photo is a
// base64 data URI. Multipart requests carry the same fields as form values.
type UpdateProfileRequest struct {
	StallName       *string `json:"stall_name"        validate:"omitempty,maxrunes=100"`
	Description     *string `json:"description"       validate:"omitempty,maxwords=100"`
	Status          *string `json:"status"            validate:"omitempty,oneof=open closed"`
	StatusTodayOnly *bool   `json:"status_today_only"`
	Photo           *string `json:"photo"`
	RemovePhoto     bool    `json:"remove_photo"`
}

type OperatingHourRequest struct {
	Day       string `json:"day"        validate:"required,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	StartTime string `json:"start_time" validate:"required,hhmm"`
	EndTime   string `json:"end_time"   validate:"required,hhmm"`
}

type SetOperatingHoursRequest struct {
	OperatingHours []OperatingHourRequest `json:"operating_hours" validate:"required,min=1,max=7,dive"`
}

// Price accepts either a JSON string ("12.50") or a JSON number (12.5).
type Price string

func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Price(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*p = Price(n.String())
	return nil
}

type MenuItemRequest struct {
	Name  string  `json:"name"  validate:"required,maxrunes=100"`
	Price Price   `json:"price" validate:"required,money"`
	Photo *string `json:"photo" validate:"omitempty,max=500"`
}

type MenuItemPatchRequest struct {
	Name        *string `json:"name"         validate:"omitempty,min=1,maxrunes=100"`
	Price       *Price  `json:"price"        validate:"omitempty,money"`
	Photo       *string `json:"photo"        validate:"omitempty,max=500"`
	RemovePhoto bool    `json:"remove_photo"`
}

type BusinessResponse struct {
	ID                   string     `json:"id"`
	Email                string     `json:"email,omitempty"`
	Username             string     `json:"username"`
	UserType             string     `json:"user_type"`
	LicenseNumber        string     `json:"license_number"`
	StallName            *string    `json:"stall_name"`
	LicenseeName         string     `json:"licensee_name"`
	EstablishmentAddress string     `json:"establishment_address"`
	HawkerCentre         string     `json:"hawker_centre"`
	PostalCode           string     `json:"postal_code"`
	Description          string     `json:"description"`
	Status               string     `json:"status"`
	StatusIsTemporary    bool       `json:"status_is_temporary"`
	StatusChangedAt      *time.Time `json:"status_changed_at"`
	Photo                *string    `json:"photo"`
	CreatedAt            time.Time  `json:"created_at"`
}

// ToBusinessResponse renders a profile. The owner's email is shown only
// when includeEmail is set.
func ToBusinessResponse(b *Business, includeEmail bool) BusinessResponse {
	resp := BusinessResponse{
		ID:                   b.UserID,
		Username:             b.Username,
		UserType:             "business",
		LicenseNumber:        b.LicenseNumber,
		StallName:            b.StallName,
		LicenseeName:         b.LicenseeName,
		EstablishmentAddress: b.EstablishmentAddress,
		HawkerCentre:         b.HawkerCentre,
		PostalCode:           b.PostalCode,
		Description:          b.Description,
		Status:               string(b.Status),
		StatusIsTemporary:    b.StatusIsTemporary,
		StatusChangedAt:      b.StatusChangedAt,
		Photo:                b.Photo,
		CreatedAt:            b.CreatedAt,
	}
	if includeEmail {
		resp.Email = b.Email
	}
	return resp
}

type OperatingHourResponse struct {
	ID        string `json:"id"`
	Day       string `json:"day"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func ToOperatingHourResponses(hours []OperatingHour) []OperatingHourResponse {
	out := make([]OperatingHourResponse, 0, len(hours))
	for _, h := range hours {
		out = append(out, OperatingHourResponse{
			ID:        h.ID,
			Day:       h.Day,
			StartTime: h.StartTime,
			EndTime:   h.EndTime,
		})
	}
	return out
}

type MenuItemResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     string    `json:"price"`
	Photo     *string   `json:"photo"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ToMenuItemResponse(item *MenuItem) MenuItemResponse {
	return MenuItemResponse{
		ID:        item.ID,
		Name:      item.Name,
		Price:     item.Price.StringFixed(2),
		Photo:     item.Photo,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

func ToMenuItemResponses(items []MenuItem) []MenuItemResponse {
	out := make([]MenuItemResponse, 0, len(items))
	for i := range items {
		out = append(out, ToMenuItemResponse(&items[i]))
	}
	return out
}
