package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// ComputeSignature builds the provider's callback HMAC: SHA-256 over the
// callback field values concatenated in sorted key order, keyed with the
// shared secret, hex encoded. The hashcode field itself is excluded.
func ComputeSignature(secret string, fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k == "hashcode" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(fields[k])
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(sb.String()))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a callback hashcode in constant time
func VerifySignature(secret string, fields map[string]string, hashcode string) bool {
	if secret == "" || hashcode == "" {
		return false
	}
	expected := ComputeSignature(secret, fields)
	return hmac.Equal([]byte(expected), []byte(strings.TrimSpace(hashcode)))
}
