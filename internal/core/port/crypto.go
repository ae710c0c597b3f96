package port

// PasswordHasher hashes and verifies secrets using the configured algorithm.
// Verify reports false for any non-matching plaintext, including digests the
// implementation cannot decode.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password string, encoded string) (bool, error)
}
