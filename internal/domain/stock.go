package domain

// StockAdjustmentRequest é o payload esperado para o ajuste de estoque de um produto.
// O estoque não é reservado pelo carrinho; este ajuste é apenas administrativo.
type StockAdjustmentRequest struct {
	Delta int `json:"delta" validate:"required"` // Quantidade a ser adicionada/removida
}

// ImageUpload é a resposta com a URL pré-assinada para envio da imagem do produto.
type ImageUpload struct {
	Key       string `json:"key"`
	UploadURL string `json:"uploadUrl"`
	ImageURL  string `json:"imageUrl"`
	ExpiresIn int    `json:"expiresInSeconds"`
}

// ImageUploadRequest informa o tipo do arquivo que será enviado ao bucket.
type ImageUploadRequest struct {
	ContentType string `json:"contentType" validate:"required,oneof=image/png image/jpeg image/webp"`
}
