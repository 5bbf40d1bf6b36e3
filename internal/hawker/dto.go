// AngelaMos | 2026
// dto.go

package hawker

import (
	"time"
)

type ListParams struct {
	Page     int
	PageSize int
}

func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type CentreResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StallCount int       `json:"stall_count"`
	CreatedAt  time.Time `json:"created_at"`
}

func ToCentreResponse(c *Centre) CentreResponse {
	return CentreResponse{
		ID:         c.ID,
		Name:       c.Name,
		StallCount: c.StallCount,
		CreatedAt:  c.CreatedAt,
	}
}

func ToCentreResponses(list []Centre) []CentreResponse {
	out := make([]CentreResponse, 0, len(list))
	for i := range list {
		out = append(out, ToCentreResponse(&list[i]))
	}
	return out
}
