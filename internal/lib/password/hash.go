// Package password реализует функции для безопасного хеширования и проверки секретов.
//
// GetHash создает bcrypt-хеш для безопасного хранения.
// CompareHash сравнивает исходный bcrypt-хеш с введённым значением.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// GetHash принимает секрет и возвращает его bcrypt‑хэш.
//
// Используется для хранения административного секрета в настройках.
func GetHash(password string) (string, error) {
	const op = "password.GetHash"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashedPassword), nil
}

// CompareHash сравнивает bcrypt‑хэш с введённым секретом.
//
// Возвращает nil, если секрет соответствует хэшу, иначе — ошибку.
func CompareHash(originalHash, externalPassword string) error {
	const op = "password.CompareHash"
	if err := bcrypt.CompareHashAndPassword([]byte(originalHash), []byte(externalPassword)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
