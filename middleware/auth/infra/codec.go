package infra

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// EncodeSegment serializa v em JSON e codifica em base64url sem padding.
func EncodeSegment(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DecodeSegment faz o caminho inverso de EncodeSegment. Aceita o segmento com
// ou sem padding.
func DecodeSegment(seg string, v any) error {
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(seg, "="))
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// Sign devolve o HMAC-SHA256 de data em hex minúsculo.
func Sign(data string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// SignatureSegment é o terceiro segmento do token: base64url do digest hex.
func SignatureSegment(signingInput string, secret []byte) string {
	return base64.RawURLEncoding.EncodeToString([]byte(Sign(signingInput, secret)))
}

// VerifySignature recalcula a assinatura e compara em tempo constante.
func VerifySignature(signingInput, carried string, secret []byte) bool {
	expected := SignatureSegment(signingInput, secret)
	return hmac.Equal([]byte(carried), []byte(expected))
}
