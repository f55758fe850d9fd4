package stock

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"unicode"
)

const (
	skuPrefixLen  = 3
	skuPrefixPad  = 'X'
	skuSuffixMin  = 1000
	skuSuffixSpan = 9000
)

// SKUGenerator genera SKUs con prefijo de categoría y sufijo aleatorio de 4 dígitos
// (ej. "ELE-4821"). No verifica colisiones; eso lo hace el caso de uso de creación.
type SKUGenerator struct {
	intn func(n int) int
}

// NewSKUGenerator usa math/rand/v2 como fuente.
func NewSKUGenerator() *SKUGenerator {
	return &SKUGenerator{intn: rand.IntN}
}

// NewSKUGeneratorWithSource permite inyectar la fuente aleatoria (tests).
func NewSKUGeneratorWithSource(intn func(n int) int) *SKUGenerator {
	return &SKUGenerator{intn: intn}
}

// Generate arma el SKU para la categoría dada.
func (g *SKUGenerator) Generate(category string) string {
	suffix := skuSuffixMin + g.intn(skuSuffixSpan)
	return fmt.Sprintf("%s-%04d", SKUPrefix(category), suffix)
}

// SKUPrefix toma las primeras 3 letras de la categoría (sin tildes, en mayúsculas)
// y rellena con 'X' si no alcanzan.
func SKUPrefix(category string) string {
	var b strings.Builder
	for _, r := range NormalizeSKU(foldText(category)) {
		if b.Len() == skuPrefixLen {
			break
		}
		if unicode.IsLetter(r) && r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	for b.Len() < skuPrefixLen {
		b.WriteRune(skuPrefixPad)
	}
	return b.String()
}
