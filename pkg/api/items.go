// Package api содержит типы HTTP/WebSocket протокола, общие для клиента и сервера.
package api

// Item представляет товарную позицию в протоколе сервера.
// Идентификатор всегда назначается сервером и положителен.
type Item struct {
	ID       int64   `json:"id"`       // ID идентификатор на сервере
	Name     string  `json:"name"`     // Name название
	Status   string  `json:"status"`   // Status "available", "reserved", "out of stock"
	Category string  `json:"category"` // Category категория
	Supplier string  `json:"supplier"` // Supplier поставщик
	Weight   float64 `json:"weight"`   // Weight вес единицы
	Quantity int64   `json:"quantity"` // Quantity количество
}

// ItemPayload тело запросов создания и обновления (без id).
type ItemPayload struct {
	Name     string  `json:"name"`
	Status   string  `json:"status"`
	Category string  `json:"category"`
	Supplier string  `json:"supplier"`
	Weight   float64 `json:"weight"`
	Quantity int64   `json:"quantity"`
}

// HealthResponse ответ на GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// MessageResponse ответ без данных (например, на DELETE)
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}
