package transport

// LineRequest carries one order line in a place/add-line request.
type LineRequest struct {
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

type PlaceOrderRequest struct {
	Lines []LineRequest `json:"lines"`
}

type AddLineRequest struct {
	Line LineRequest `json:"line"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

type RegisterCustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type RenameCustomerRequest struct {
	Name string `json:"name"`
}

type AuthLoginRequest struct {
	CustomerID string `json:"customer_id"`
	TTL        int    `json:"ttl_seconds"`
}

type RefreshRequest struct {
	SessionID string `json:"session_id"`
	TTL       int    `json:"ttl_seconds"`
}
