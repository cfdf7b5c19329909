package cart

import "github.com/shopspring/decimal"

var (
	// TaxRate é a alíquota fixa aplicada sobre o subtotal.
	TaxRate = decimal.RequireFromString("0.08")
	// FreeShippingThreshold é o subtotal a partir do qual o frete é grátis (inclusive).
	FreeShippingThreshold = decimal.RequireFromString("50.00")
	// FlatShipping é o frete cobrado abaixo do limite.
	FlatShipping = decimal.RequireFromString("5.00")
)

// ProductInfo é o que o motor precisa saber de um produto.
type ProductInfo struct {
	Name  string
	Price decimal.Decimal
	Stock int
}

// Lookup resolve um productId. ok=false indica produto inexistente ou removido.
type Lookup interface {
	Get(productID string) (info ProductInfo, ok bool)
}

// LookupFunc adapta uma função a Lookup.
type LookupFunc func(productID string) (ProductInfo, bool)

func (f LookupFunc) Get(productID string) (ProductInfo, bool) { return f(productID) }

// Subtotal soma preço × quantidade. Produtos não resolvidos contribuem com zero.
// Nenhum arredondamento é feito por linha.
func Subtotal(c Cart, lookup Lookup) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range c {
		info, ok := lookup.Get(it.ProductID)
		if !ok {
			continue
		}
		sum = sum.Add(info.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum
}

// Tax = round(subtotal × 0.08, 2), meio para cima.
func Tax(subtotal decimal.Decimal) decimal.Decimal {
	return roundHalfUp(subtotal.Mul(TaxRate))
}

// Shipping é zero quando subtotal >= 50.00; caso contrário 5.00.
func Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(FreeShippingThreshold) {
		return decimal.Zero
	}
	return FlatShipping
}

// Total = round(subtotal + tax + shipping, 2), meio para cima.
func Total(subtotal, tax, shipping decimal.Decimal) decimal.Decimal {
	return roundHalfUp(subtotal.Add(tax).Add(shipping))
}

// roundHalfUp arredonda para 2 casas. Valores monetários aqui nunca são negativos,
// então o "meio longe do zero" do decimal coincide com meio para cima.
func roundHalfUp(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Summary é a derivação completa de preços de um carrinho.
type Summary struct {
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	Shipping  decimal.Decimal `json:"shipping"`
	Total     decimal.Decimal `json:"total"`
}

// Summarize calcula os quatro valores e a contagem de itens.
func Summarize(c Cart, lookup Lookup) Summary {
	subtotal := Subtotal(c, lookup)
	tax := Tax(subtotal)
	shipping := Shipping(subtotal)
	return Summary{
		ItemCount: c.ItemCount(),
		Subtotal:  subtotal,
		Tax:       tax,
		Shipping:  shipping,
		Total:     Total(subtotal, tax, shipping),
	}
}

// Line é uma linha precificada, usada no resumo do checkout.
type Line struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"lineTotal"`
	Available bool            `json:"available"`
}

// Lines precifica cada item. Produtos não resolvidos aparecem com Available=false e valor zero.
func Lines(c Cart, lookup Lookup) []Line {
	lines := make([]Line, 0, len(c))
	for _, it := range c {
		info, ok := lookup.Get(it.ProductID)
		line := Line{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: decimal.Zero, LineTotal: decimal.Zero}
		if ok {
			line.Name = info.Name
			line.UnitPrice = info.Price
			line.LineTotal = info.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
			line.Available = true
		}
		lines = append(lines, line)
	}
	return lines
}
