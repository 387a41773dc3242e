package auth

import "golang.org/x/crypto/bcrypt"

// bcrypt cost 12 keeps a hash around 250ms on current hardware.
const hashCost = 12

func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), hashCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword returns nil when plain matches the stored hash.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
