package entity

import "time"

// AdjustmentType tipo de ajuste de inventario.
type AdjustmentType string

const (
	AdjustmentAdd        AdjustmentType = "ADD"        // entrada a una bodega
	AdjustmentRemove     AdjustmentType = "REMOVE"     // salida de una bodega
	AdjustmentTransfer   AdjustmentType = "TRANSFER"   // traslado entre bodegas
	AdjustmentCorrection AdjustmentType = "CORRECTION" // fijación directa del on-hand
)

// IsValid indica si el tipo es uno de los conocidos.
func (t AdjustmentType) IsValid() bool {
	switch t {
	case AdjustmentAdd, AdjustmentRemove, AdjustmentTransfer, AdjustmentCorrection:
		return true
	}
	return false
}

// AdjustmentReason motivo enumerado del ajuste.
type AdjustmentReason string

const (
	ReasonSupplierDelivery AdjustmentReason = "SUPPLIER_DELIVERY"
	ReasonCustomerReturn   AdjustmentReason = "CUSTOMER_RETURN"
	ReasonDamaged          AdjustmentReason = "DAMAGED"
	ReasonCorrection       AdjustmentReason = "CORRECTION"
	ReasonTheft            AdjustmentReason = "THEFT"
	ReasonOther            AdjustmentReason = "OTHER"
	ReasonOrderFulfillment AdjustmentReason = "ORDER_FULFILLMENT"
	ReasonTransferNote     AdjustmentReason = "TRANSFER_NOTE"
)

// AdjustmentReasons lista los motivos válidos en orden de presentación.
var AdjustmentReasons = []AdjustmentReason{
	ReasonSupplierDelivery,
	ReasonCustomerReturn,
	ReasonDamaged,
	ReasonCorrection,
	ReasonTheft,
	ReasonOther,
	ReasonOrderFulfillment,
	ReasonTransferNote,
}

// IsValid indica si el motivo pertenece al conjunto enumerado.
func (r AdjustmentReason) IsValid() bool {
	for _, v := range AdjustmentReasons {
		if r == v {
			return true
		}
	}
	return false
}

// ActorSystem actor para ajustes automáticos.
const ActorSystem = "System"

// Adjustment registro inmutable del historial de ajustes (auditoría).
// Para TRANSFER se usan FromWarehouseID/ToWarehouseID; para el resto WarehouseID.
// En CORRECTION, Quantity es el delta con signo (nuevo - anterior).
type Adjustment struct {
	ID              string
	Sequence        int64 // orden de commit dentro del almacén
	ProductID       string
	Type            AdjustmentType
	Quantity        int
	Reason          AdjustmentReason
	Note            string
	WarehouseID     string
	FromWarehouseID string
	ToWarehouseID   string
	Actor           string
	Timestamp       time.Time
	PreviousOnHand  int
	ResultingOnHand int // on-hand inmediatamente después de aplicar este registro
}
