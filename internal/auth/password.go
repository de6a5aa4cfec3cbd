package auth

import "golang.org/x/crypto/bcrypt"

// sentinelHash is a valid bcrypt digest of a value no caller can supply.
// It is compared against when no identity matches so that the missing and
// mismatching paths cost the same adaptive work.
const sentinelHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// HashPassword digests a plaintext password with bcrypt.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// VerifyPassword reports whether candidate matches the stored digest.
func VerifyPassword(digest, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(candidate)) == nil
}

// burnVerification performs one bcrypt comparison against the sentinel
// digest. The result is always a mismatch; only the timing matters.
func burnVerification(candidate string) {
	_ = bcrypt.CompareHashAndPassword([]byte(sentinelHash), []byte(candidate))
}
