package query

import (
	"context"
	"fmt"

	"github.com/internship-hub/internship-service/internal/domain/internship"
	"github.com/internship-hub/internship-service/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST INTERNSHIPS QUERY
// ══════════════════════════════════════════════════════════════════════════════

// ListInternshipsQuery contains the internship list filters.
type ListInternshipsQuery struct {
	// Status - необязательный фильтр по статусу ("OPEN"/"CLOSED").
	Status string
}

// InternshipDTO - стажировка в ответе API.
type InternshipDTO struct {
	// ID - идентификатор стажировки.
	ID string `json:"id"`

	// Name - название.
	Name string `json:"name"`

	// Description - описание программы.
	Description string `json:"description"`

	// Status - текущий статус.
	Status string `json:"status"`

	// RegistrationStart - начало приёма заявок.
	RegistrationStart string `json:"registration_start"`

	// RegistrationEnd - окончание приёма заявок.
	RegistrationEnd string `json:"registration_end"`

	// Start - начало обучения.
	Start string `json:"start"`

	// End - окончание обучения.
	End string `json:"end"`
}

// ListInternshipsHandler handles the ListInternshipsQuery.
type ListInternshipsHandler struct {
	internshipRepo internship.Repository
}

// NewListInternshipsHandler creates a new ListInternshipsHandler.
func NewListInternshipsHandler(internshipRepo internship.Repository) *ListInternshipsHandler {
	return &ListInternshipsHandler{
		internshipRepo: internshipRepo,
	}
}

// Handle executes the list internships query.
func (h *ListInternshipsHandler) Handle(ctx context.Context, q ListInternshipsQuery) ([]InternshipDTO, error) {
	var (
		internships []*internship.Internship
		err         error
	)

	if q.Status != "" {
		status, parseErr := internship.ParseStatus(q.Status)
		if parseErr != nil {
			return nil, parseErr
		}
		internships, err = h.internshipRepo.GetByStatus(ctx, status)
	} else {
		internships, err = h.internshipRepo.GetAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list_internships: %w", err)
	}

	result := make([]InternshipDTO, 0, len(internships))
	for _, i := range internships {
		result = append(result, InternshipDTO{
			ID:                i.ID,
			Name:              i.Name,
			Description:       i.Description,
			Status:            i.Status.String(),
			RegistrationStart: timeutil.FormatDateStr(i.Dates.RegistrationStart),
			RegistrationEnd:   timeutil.FormatDateStr(i.Dates.RegistrationEnd),
			Start:             timeutil.FormatDateStr(i.Dates.Start),
			End:               timeutil.FormatDateStr(i.Dates.End),
		})
	}

	return result, nil
}
