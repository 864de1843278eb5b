package dto

// RevenueCatEvent is the subset of the RevenueCat webhook payload we act on.
type RevenueCatEvent struct {
	Event struct {
		Type                  string `json:"type"`
		AppUserID             string `json:"app_user_id"`
		ProductID             string `json:"product_id"`
		PurchasedAtMs         int64  `json:"purchased_at_ms"`
		ExpirationAtMs        int64  `json:"expiration_at_ms"`
		TransactionID         string `json:"transaction_id"`
		OriginalTransactionID string `json:"original_transaction_id"`
	} `json:"event"`
}
