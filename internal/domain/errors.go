package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")

	// Errores de validación de ajustes y de creación de stock.
	ErrInvalidQuantity     = errors.New("la cantidad debe ser un entero positivo")
	ErrMissingReason       = errors.New("el motivo del ajuste es obligatorio")
	ErrMissingWarehouse    = errors.New("la bodega es obligatoria")
	ErrNoStockAllocated    = errors.New("debe asignar al menos una unidad a alguna bodega")
	ErrInvalidDistribution = errors.New("modo de distribución inválido")

	// ErrInsufficientWarehouseStock la bodega de origen no tiene unidades suficientes.
	ErrInsufficientWarehouseStock = errors.New("stock insuficiente en la bodega")

	// ErrConcurrencyConflict no se obtuvo el bloqueo del producto dentro del tiempo de espera.
	// El llamador debe reintentar el ajuste completo.
	ErrConcurrencyConflict = errors.New("el producto está siendo ajustado por otra operación, reintente")
)

// IsValidation indica si err pertenece a la familia de errores de validación
// (entrada mal formada del llamador; nunca se reintenta automáticamente).
func IsValidation(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrMissingReason),
		errors.Is(err, ErrMissingWarehouse),
		errors.Is(err, ErrNoStockAllocated),
		errors.Is(err, ErrInvalidDistribution):
		return true
	}
	return false
}
