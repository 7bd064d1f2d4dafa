package repository

import (
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// ReconciliationRepository persiste sesiones de conteo físico y sus filas.
type ReconciliationRepository interface {
	CreateSession(s *entity.ReconciliationSession) error
	GetSession(id string) (*entity.ReconciliationSession, error)

	// GetSessionForUpdate bloquea la fila de la sesión: el chequeo de estado
	// draft y la transición a submitted/discarded deben ser atómicos frente a
	// un doble submit concurrente.
	GetSessionForUpdate(id string) (*entity.ReconciliationSession, error)

	// UpdateItem persiste conteo físico, varianza, motivo y notas de una fila.
	// Última escritura gana por fila; la sesión no se bloquea completa.
	UpdateItem(it *entity.ReconciliationItem) error

	UpdateSessionStatus(s *entity.ReconciliationSession) error
	DeleteSession(id string) error
}

// PoolCountRepository persiste los conteos sueltos de la variante sin sesión.
type PoolCountRepository interface {
	Create(c *entity.PoolCount) error
	GetByID(id string) (*entity.PoolCount, error)
	// GetForUpdate bloquea el conteo durante apply/discard para que dos
	// revisores no lo resuelvan dos veces.
	GetForUpdate(id string) (*entity.PoolCount, error)
	Update(c *entity.PoolCount) error
	ListPending(limit, offset int) ([]*entity.PoolCount, error)
}
