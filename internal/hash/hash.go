package hash

import "golang.org/x/crypto/bcrypt"

// dummyHash is compared against when the user does not exist so that a
// failed login costs the same as a wrong password.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// ErrPasswordTooLong is returned for passwords longer than bcrypt's 72 byte
// input limit.
var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

type Bcrypt struct {
	Cost int
}

func (b Bcrypt) HashPassword(password string) (string, error) {
	if len(password) > 72 {
		return "", ErrPasswordTooLong
	}
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashbytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashbytes), nil
}

func (b Bcrypt) CheckPassword(hash, password string) bool {
	if hash == "" {
		hash = dummyHash
		_ = bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
