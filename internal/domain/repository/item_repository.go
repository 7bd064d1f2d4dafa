package repository

import "github.com/jhoicas/Kardex-api/internal/domain/entity"

// ItemRepository es la vista de solo lectura que el kardex consume del
// catálogo (SKUs y colores de tela). El CRUD del catálogo vive en otro
// módulo; aquí solo se necesita existencia, flag activo y unidad.
type ItemRepository interface {
	GetByID(id string) (*entity.Item, error)
	ListActive() ([]*entity.Item, error)
}
