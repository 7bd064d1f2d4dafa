package entity

import "time"

// Clases de artículo rastreable.
const (
	ItemKindSKU          = "sku"           // unidad terminada (producto+variación+talla)
	ItemKindFabricColour = "fabric_colour" // tela por color, cantidad fraccionaria
)

// Item representa un artículo rastreable del kardex: un SKU o un color de tela.
// El catálogo (productos, telas, tallas) vive en otro módulo; aquí solo se
// consume la vista mínima que necesita el motor de inventario.
type Item struct {
	ID        string
	Kind      string // sku | fabric_colour
	Name      string
	Unit      string // solo telas: "m", "kg", ...
	IsActive  bool   // inactivo = rechaza nuevas entradas
	CreatedAt time.Time
}

// IsFabric indica si el artículo se mide en cantidades fraccionarias.
func (i *Item) IsFabric() bool {
	return i.Kind == ItemKindFabricColour
}
