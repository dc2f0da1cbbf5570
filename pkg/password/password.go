package password

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strconv"
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
	"golang.org/x/crypto/bcrypt"
)

const maxLength = 128

var commonPasswords = map[string]struct{}{
	"password": {}, "password1": {}, "12345678": {}, "123456789": {},
	"qwerty123": {}, "iloveyou": {}, "admin123": {}, "welcome1": {},
	"contraseña": {}, "contrasena": {}, "11111111": {}, "abc12345": {},
}

// Policy is the password strength policy applied to every password a user
// chooses.
type Policy struct {
	MinLength int
}

// NewPolicy returns a policy with at least the given minimum length.
func NewPolicy(minLength int) Policy {
	if minLength < 8 {
		minLength = 8
	}
	return Policy{MinLength: minLength}
}

// Validate returns the first rule pw breaks. attrs are personal values
// (username, email) the password must not contain.
func (p Policy) Validate(pw string, attrs ...string) error {
	return validation.Validate(pw,
		validation.Required.Error("password is required"),
		validation.RuneLength(p.MinLength, maxLength).
			Error("password must be between "+strconv.Itoa(p.MinLength)+" and "+strconv.Itoa(maxLength)+" characters"),
		validation.By(notNumeric),
		validation.By(notCommon),
		validation.By(notSimilar(attrs)),
	)
}

func notNumeric(value interface{}) error {
	s, _ := value.(string)
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return nil
		}
	}
	return errors.New("password cannot be entirely numeric")
}

func notCommon(value interface{}) error {
	s, _ := value.(string)
	if _, ok := commonPasswords[strings.ToLower(s)]; ok {
		return errors.New("password is too common")
	}
	return nil
}

func notSimilar(attrs []string) validation.RuleFunc {
	return func(value interface{}) error {
		s := strings.ToLower(value.(string))
		for _, a := range attrs {
			a = strings.ToLower(a)
			if i := strings.IndexByte(a, '@'); i >= 0 {
				a = a[:i]
			}
			if len(a) >= 4 && strings.Contains(s, a) {
				return errors.New("password is too similar to your personal information")
			}
		}
		return nil
	}
}

// ── hashing ──

// Hash bcrypts pw. A cost outside bcrypt's range falls back to the default.
func Hash(pw string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Matches reports whether pw is the password behind hash.
func Matches(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// ── temporary passwords ──

const (
	letters = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"
	digits  = "23456789"
)

// GenerateTemp returns a random password of the given length holding at least
// one letter and one digit. Ambiguous glyphs (0, O, 1, l, I) are excluded.
func GenerateTemp(length int) (string, error) {
	const all = letters + digits

	if length < 8 {
		length = 10
	}

	result := make([]byte, length)

	c, err := pick(letters)
	if err != nil {
		return "", err
	}
	result[0] = c

	if c, err = pick(digits); err != nil {
		return "", err
	}
	result[1] = c

	for i := 2; i < length; i++ {
		if c, err = pick(all); err != nil {
			return "", err
		}
		result[i] = c
	}

	// Fisher-Yates
	for i := length - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		result[i], result[j.Int64()] = result[j.Int64()], result[i]
	}

	return string(result), nil
}

func pick(set string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		return 0, err
	}
	return set[n.Int64()], nil
}

