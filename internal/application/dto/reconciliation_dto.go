package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// StartSessionRequest body para POST /api/reconciliations.
type StartSessionRequest struct {
	Notes string `json:"notes,omitempty"`
}

// UpdateSessionItemsRequest body para PUT /api/reconciliations/:id/items.
type UpdateSessionItemsRequest struct {
	Items []SessionItemUpdateRequest `json:"items"`
}

// SessionItemUpdateRequest conteo digitado para una fila de la sesión.
type SessionItemUpdateRequest struct {
	ItemRowID   string          `json:"item_row_id"`
	PhysicalQty decimal.Decimal `json:"physical_qty"`
	Reason      string          `json:"reason,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

// SessionResponse sesión de conteo con sus filas.
type SessionResponse struct {
	ID          string           `json:"id"`
	Status      string           `json:"status"`
	Notes       string           `json:"notes,omitempty"`
	CreatedBy   string           `json:"created_by"`
	CreatedAt   time.Time        `json:"created_at"`
	SubmittedAt *time.Time       `json:"submitted_at,omitempty"`
	Items       []SessionItemDTO `json:"items"`
}

// SessionItemDTO fila de la sesión en respuestas.
type SessionItemDTO struct {
	ID          string           `json:"id"`
	ItemID      string           `json:"item_id"`
	SystemQty   decimal.Decimal  `json:"system_qty"`
	PhysicalQty *decimal.Decimal `json:"physical_qty,omitempty"`
	Variance    *decimal.Decimal `json:"variance,omitempty"`
	Reason      string           `json:"reason,omitempty"`
	Notes       string           `json:"notes,omitempty"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// NewSessionResponse convierte la sesión a DTO.
func NewSessionResponse(s *entity.ReconciliationSession) SessionResponse {
	resp := SessionResponse{
		ID:          s.ID,
		Status:      s.Status,
		Notes:       s.Notes,
		CreatedBy:   s.CreatedBy,
		CreatedAt:   s.CreatedAt,
		SubmittedAt: s.SubmittedAt,
		Items:       make([]SessionItemDTO, 0, len(s.Items)),
	}
	for i := range s.Items {
		it := &s.Items[i]
		resp.Items = append(resp.Items, SessionItemDTO{
			ID:          it.ID,
			ItemID:      it.ItemID,
			SystemQty:   it.SystemQty,
			PhysicalQty: it.PhysicalQty,
			Variance:    it.Variance,
			Reason:      it.Reason,
			Notes:       it.Notes,
			UpdatedAt:   it.UpdatedAt,
		})
	}
	return resp
}

// SubmitPoolCountRequest body para POST /api/pool-counts.
type SubmitPoolCountRequest struct {
	ItemID     string          `json:"item_id"`
	CountedQty decimal.Decimal `json:"counted_qty"`
	Notes      string          `json:"notes,omitempty"`
}

// ReviewPoolCountsRequest body para apply/discard por lotes.
type ReviewPoolCountsRequest struct {
	IDs []string `json:"ids"`
}

// PoolCountDTO un conteo suelto en respuestas.
type PoolCountDTO struct {
	ID         string          `json:"id"`
	ItemID     string          `json:"item_id"`
	SystemQty  decimal.Decimal `json:"system_qty"`
	CountedQty decimal.Decimal `json:"counted_qty"`
	Status     string          `json:"status"`
	Notes      string          `json:"notes,omitempty"`
	CountedBy  string          `json:"counted_by"`
	CreatedAt  time.Time       `json:"created_at"`
	ReviewedBy string          `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time      `json:"reviewed_at,omitempty"`
}

// NewPoolCountDTO convierte el conteo a DTO.
func NewPoolCountDTO(c *entity.PoolCount) PoolCountDTO {
	return PoolCountDTO{
		ID:         c.ID,
		ItemID:     c.ItemID,
		SystemQty:  c.SystemQty,
		CountedQty: c.CountedQty,
		Status:     c.Status,
		Notes:      c.Notes,
		CountedBy:  c.CountedBy,
		CreatedAt:  c.CreatedAt,
		ReviewedBy: c.ReviewedBy,
		ReviewedAt: c.ReviewedAt,
	}
}
