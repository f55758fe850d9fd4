package entity

import "time"

// Warehouse representa una bodega donde se almacena inventario (multi-bodega).
// Su ciclo de vida pertenece al directorio de bodegas; el ledger solo la referencia por ID.
type Warehouse struct {
	ID        string
	Name      string
	Location  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
