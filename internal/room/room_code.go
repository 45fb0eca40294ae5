package room

import "math/rand/v2"

const (
	codeLength  = 4
	maxRetries  = 100
	codeLetters = "ABCDEFGHJKLMNPQRSTUVWXYZ" // no I or O, they read as digits
)

// GenerateCode creates a random 4-letter uppercase room code that is not in existing.
func GenerateCode(existing map[string]bool) string {
	for range maxRetries {
		code := randomCode()
		if !existing[code] {
			return code
		}
	}
	return randomCode()
}

func randomCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeLetters[rand.IntN(len(codeLetters))]
	}
	return string(b)
}
