package dto

import (
	"time"

	"github.com/ignatzorin/sanmateo-reports/internal/domain/valueobject"
	"github.com/ignatzorin/sanmateo-reports/internal/usecase/report"
	"github.com/ignatzorin/sanmateo-reports/internal/validation"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type UpdateStatusRequest struct {
	Status     string  `json:"status" binding:"required"`
	Message    string  `json:"message"`
	AssignedTo *string `json:"assigned_to"`
	Priority   string  `json:"priority"`
}

// Validate проверяет длины свободных полей.
func (r UpdateStatusRequest) Validate() error {
	if err := validation.ValidateLength("message", r.Message, 0, validation.MaxStatusMessageLength); err != nil {
		return err
	}
	if r.AssignedTo != nil {
		return validation.ValidateLength("assigned_to", *r.AssignedTo, 0, validation.MaxAssigneeLength)
	}
	return nil
}

type CategoryStatDTO struct {
	Category   string `json:"category"`
	Label      string `json:"label"`
	Icon       string `json:"icon"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

type BarangayStatDTO struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type DashboardResponse struct {
	Total         int                   `json:"total"`
	PendingReview int                   `json:"pending_review"`
	InProgress    int                   `json:"in_progress"`
	Resolved      int                   `json:"resolved"`
	Rejected      int                   `json:"rejected"`
	Categories    []CategoryStatDTO     `json:"categories"`
	TopBarangays  []BarangayStatDTO     `json:"top_barangays"`
	Recent        []AdminReportResponse `json:"recent"`
	GeneratedAt   time.Time             `json:"generated_at"`
}

func ToDashboardResponse(d *report.Dashboard) DashboardResponse {
	resp := DashboardResponse{
		Total:         d.Total,
		PendingReview: d.PendingReview,
		InProgress:    d.InProgress,
		Resolved:      d.Resolved,
		Rejected:      d.Rejected,
		Categories:    make([]CategoryStatDTO, 0, len(d.Categories)),
		TopBarangays:  make([]BarangayStatDTO, 0, len(d.TopBarangays)),
		Recent:        ToAdminReportResponses(d.Recent),
		GeneratedAt:   d.GeneratedAt,
	}
	for _, c := range d.Categories {
		resp.Categories = append(resp.Categories, CategoryStatDTO{
			Category:   string(c.Category),
			Label:      c.Label,
			Icon:       c.Icon,
			Count:      c.Count,
			Percentage: c.Percentage,
		})
	}
	for _, b := range d.TopBarangays {
		resp.TopBarangays = append(resp.TopBarangays, BarangayStatDTO{Name: b.Name, Count: b.Count})
	}
	return resp
}

type OptionDTO struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Badge string `json:"badge,omitempty"`
}

// MetaResponse — справочники для форм клиента.
type MetaResponse struct {
	Categories     []valueobject.CategoryInfo `json:"categories"`
	Barangays      []string                   `json:"barangays"`
	Priorities     []OptionDTO                `json:"priorities"`
	Statuses       []OptionDTO                `json:"statuses"`
	MaxAttachments int                        `json:"max_attachments"`
	DescriptionMin int                        `json:"description_min"`
	DescriptionMax int                        `json:"description_max"`
}
