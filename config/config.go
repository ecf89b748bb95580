package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config đọc biến môi trường từ file .env (nếu có)
func Config(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		fmt.Print("")
	}
	return os.Getenv(key)
}

// ConfigOrDefault trả về giá trị mặc định nếu biến không được set
func ConfigOrDefault(key, fallback string) string {
	value := Config(key)
	if value == "" {
		return fallback
	}
	return value
}
