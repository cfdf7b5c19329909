// Package cart contém o motor do carrinho: mutações puras sobre a lista de itens
// e a derivação de subtotal, imposto, frete e total.
//
// As funções nunca alteram o slice recebido; sempre devolvem um novo carrinho.
package cart

// Item é um par (produto, quantidade). Quantity é sempre positiva em um carrinho válido.
type Item struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Cart é o conjunto de itens, com ProductID como chave única. A ordem de inserção é preservada.
type Cart []Item

func (c Cart) index(productID string) int {
	for i, it := range c {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c Cart) clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// Find devolve o item do produto, se presente.
func (c Cart) Find(productID string) (Item, bool) {
	if i := c.index(productID); i >= 0 {
		return c[i], true
	}
	return Item{}, false
}

// ItemCount soma as quantidades de todos os itens.
func (c Cart) ItemCount() int {
	n := 0
	for _, it := range c {
		n += it.Quantity
	}
	return n
}

// AddItem incrementa a quantidade quando o produto já está no carrinho, ou o acrescenta.
// qty < 1 é tratado como 1. Não há limite superior aqui: o clamp de estoque é feito antes.
func AddItem(c Cart, productID string, qty int) Cart {
	if qty < 1 {
		qty = 1
	}
	out := c.clone()
	if i := out.index(productID); i >= 0 {
		out[i].Quantity += qty
		return out
	}
	return append(out, Item{ProductID: productID, Quantity: qty})
}

// RemoveItem retira a entrada do produto, qualquer que seja a quantidade.
func RemoveItem(c Cart, productID string) Cart {
	out := make(Cart, 0, len(c))
	for _, it := range c {
		if it.ProductID != productID {
			out = append(out, it)
		}
	}
	return out
}

// SetQuantity substitui a quantidade do produto. qty <= 0 equivale a RemoveItem.
// Um produto ausente é acrescentado com a quantidade informada.
func SetQuantity(c Cart, productID string, qty int) Cart {
	if qty <= 0 {
		return RemoveItem(c, productID)
	}
	out := c.clone()
	if i := out.index(productID); i >= 0 {
		out[i].Quantity = qty
		return out
	}
	return append(out, Item{ProductID: productID, Quantity: qty})
}
