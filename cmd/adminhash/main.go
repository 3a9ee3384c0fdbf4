// Команда adminhash печатает bcrypt-хеш пароля администратора для ADMIN_PASSWORD_HASH.
//
//	echo -n 'SanMateo2024!' | go run ./cmd/adminhash
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/sanmateo-reports/internal/validation"
)

func main() {
	password, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && password == "" {
		fmt.Fprintln(os.Stderr, "adminhash: пароль не передан на stdin")
		os.Exit(1)
	}
	password = strings.TrimRight(password, "\r\n")

	hash, err := hashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "adminhash: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}

func hashPassword(password string) (string, error) {
	if err := validation.ValidatePassword(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("не удалось получить хеш: %w", err)
	}
	return string(hash), nil
}
