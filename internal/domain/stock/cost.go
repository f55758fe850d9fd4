package stock

import "github.com/shopspring/decimal"

// costPlaces decimales con que se guarda el costo promedio.
const costPlaces = 4

// WeightedAverageCost costo promedio ponderado tras una entrada:
// ((onHand * costoActual) + (entrada * costoEntrada)) / (onHand + entrada).
// Sin existencias previas el resultado es el costo de la entrada.
func WeightedAverageCost(onHand int, current decimal.Decimal, incoming int, incomingCost decimal.Decimal) decimal.Decimal {
	total := onHand + incoming
	if total <= 0 {
		return decimal.Zero
	}
	if onHand <= 0 {
		return incomingCost.Round(costPlaces)
	}
	num := decimal.NewFromInt(int64(onHand)).Mul(current).
		Add(decimal.NewFromInt(int64(incoming)).Mul(incomingCost))
	return num.DivRound(decimal.NewFromInt(int64(total)), costPlaces)
}
