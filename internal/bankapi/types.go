package bankapi

import "time"

// Profile профиль владельца счёта в банковском API.
type Profile struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

// Balance баланс счёта в одной валюте.
type Balance struct {
	ID       int64   `json:"id"`
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
}

// Типы транзакций в выписке.
const (
	TransactionTypeCredit = "CREDIT"
	TransactionTypeDebit  = "DEBIT"
)

// Transaction входящая или исходящая транзакция из выписки по счёту.
// Reference — свободный текст назначения платежа, единственный ключ
// связывания платежа с аккаунтом.
type Transaction struct {
	TransactionID string    `json:"transaction_id"`
	Type          string    `json:"type"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	Reference     string    `json:"reference"`
	Timestamp     time.Time `json:"timestamp"`
}

// Statement выписка по счёту за интервал времени.
type Statement struct {
	Transactions []Transaction `json:"transactions"`
}
