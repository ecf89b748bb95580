package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// TokenGenerator sinh mã vé và mã đối chiếu. Tách interface để test
// và để không phụ thuộc cứng vào một nguồn random cụ thể.
type TokenGenerator interface {
	// Code sinh chuỗi hex hoa từ nBytes bytes random
	Code(nBytes int) (string, error)
	// NumericCode sinh chuỗi số có độ dài length
	NumericCode(length int) (string, error)
}

type cryptoTokenGenerator struct{}

func NewTokenGenerator() TokenGenerator {
	return cryptoTokenGenerator{}
}

// Tokens generator mặc định dùng crypto/rand
var Tokens = NewTokenGenerator()

func (cryptoTokenGenerator) Code(nBytes int) (string, error) {
	byt := make([]byte, nBytes)
	if _, err := rand.Read(byt); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(byt)), nil
}

func (cryptoTokenGenerator) NumericCode(length int) (string, error) {
	const charset = "0123456789"

	code := make([]byte, length)
	if _, err := rand.Read(code); err != nil {
		return "", err
	}

	for i := 0; i < length; i++ {
		code[i] = charset[int(code[i])%len(charset)]
	}

	return string(code), nil
}
