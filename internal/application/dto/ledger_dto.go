package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/ledger"
)

// PostInwardRequest body para POST /api/ledger/inward.
type PostInwardRequest struct {
	ItemID      string          `json:"item_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Reason      string          `json:"reason,omitempty"` // vacío = received
	ReferenceID *string         `json:"reference_id,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	Location    string          `json:"location,omitempty"`
}

// PostOutwardRequest body para POST /api/ledger/outward.
type PostOutwardRequest struct {
	ItemID        string          `json:"item_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	Reason        string          `json:"reason"`
	ReferenceID   *string         `json:"reference_id,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	Location      string          `json:"location,omitempty"`
	AllowNegative bool            `json:"allow_negative,omitempty"`
}

// QuickInwardRequest body para POST /api/ledger/inward/quick (varios artículos,
// todo o nada).
type QuickInwardRequest struct {
	Items    []QuickInwardItemRequest `json:"items"`
	Location string                   `json:"location,omitempty"`
}

// QuickInwardItemRequest un renglón del alta rápida.
type QuickInwardItemRequest struct {
	ItemID   string          `json:"item_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// EditInwardRequest body para PUT /api/ledger/entries/:id.
type EditInwardRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
	Notes    string          `json:"notes,omitempty"`
}

// AllocateRequest body para POST /api/ledger/entries/:id/allocate.
// Type: production | rto | adjustment. Condition solo aplica a rto.
type AllocateRequest struct {
	Type         string `json:"type"`
	AllocationID string `json:"allocation_id,omitempty"`
	Condition    string `json:"condition,omitempty"`
}

// PostingResponse resultado de registrar, editar o borrar un movimiento.
type PostingResponse struct {
	TransactionID    string          `json:"transaction_id,omitempty"`
	NewBalance       decimal.Decimal `json:"new_balance"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
}

// AllocationResponse resultado de (re)asignar una entrada.
type AllocationResponse struct {
	EntryDeleted     bool            `json:"entry_deleted"`
	Reason           string          `json:"reason,omitempty"`
	ReferenceID      *string         `json:"reference_id,omitempty"`
	NewBalance       decimal.Decimal `json:"new_balance"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
}

// BalanceResponse saldo actual y disponible de un artículo.
type BalanceResponse struct {
	ItemID    string          `json:"item_id"`
	Current   decimal.Decimal `json:"current"`
	Available decimal.Decimal `json:"available"`
}

// NewBalanceResponse arma la respuesta desde el saldo de dominio.
func NewBalanceResponse(itemID string, b ledger.Balance) BalanceResponse {
	return BalanceResponse{ItemID: itemID, Current: b.Current, Available: b.Available}
}

// MovementEntryDTO una entrada del kardex en respuestas.
type MovementEntryDTO struct {
	ID          string          `json:"id"`
	ItemID      string          `json:"item_id"`
	Direction   string          `json:"direction"`
	Quantity    decimal.Decimal `json:"quantity"`
	Reason      string          `json:"reason"`
	ReferenceID *string         `json:"reference_id,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	Location    string          `json:"location,omitempty"`
	CreatedBy   string          `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewMovementEntryDTO convierte la entidad a DTO.
func NewMovementEntryDTO(m *entity.MovementEntry) MovementEntryDTO {
	return MovementEntryDTO{
		ID:          m.ID,
		ItemID:      m.ItemID,
		Direction:   m.Direction,
		Quantity:    m.Quantity,
		Reason:      m.Reason,
		ReferenceID: m.ReferenceID,
		Notes:       m.Notes,
		Location:    m.Location,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
	}
}
