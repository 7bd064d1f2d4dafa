package repository

import "github.com/jhoicas/Kardex-api/internal/domain/entity"

// ProductionBatchRepository define el puerto hacia los lotes de producción.
// El kardex solo lee el lote y actualiza su cantidad completada/estado al
// asignar o desasignar entradas.
type ProductionBatchRepository interface {
	GetByID(id string) (*entity.ProductionBatch, error)
	// GetForUpdate bloquea la fila del lote dentro de la transacción de
	// asignación para que dos asignaciones al mismo lote no se pisen.
	GetForUpdate(id string) (*entity.ProductionBatch, error)
	Update(b *entity.ProductionBatch) error
}
