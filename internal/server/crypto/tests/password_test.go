package tests

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	crypt "github.com/IvanChernomyrdin/go-expense-tracker/internal/server/crypto"
)

func defaultParams() crypt.Argon2Params {
	return crypt.Argon2Params{
		Time:      1,
		MemoryKiB: 32 * 1024,
		Threads:   1,
		KeyLen:    32,
		SaltLen:   16,
	}
}

// Хэширование и успешная проверка
func TestHashAndVerifyPassword_OK(t *testing.T) {
	password := "Sup3r-secret-password"

	hash, err := crypt.HashPassword(password, defaultParams())
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if !strings.HasPrefix(hash, "argon2id$v=19$") {
		t.Fatalf("unexpected hash format: %s", hash)
	}

	ok, err := crypt.VerifyPassword(password, hash)
	if err != nil {
		t.Fatalf("VerifyPassword error: %v", err)
	}
	if !ok {
		t.Fatal("expected password to be valid")
	}
}

// Неверный пароль
func TestVerifyPassword_InvalidPassword(t *testing.T) {
	hash, err := crypt.HashPassword("correct-password", defaultParams())
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	ok, err := crypt.VerifyPassword("wrong-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword error: %v", err)
	}
	if ok {
		t.Fatal("expected password to be invalid")
	}
}

// Пустой пароль
func TestHashPassword_EmptyPassword(t *testing.T) {
	if _, err := crypt.HashPassword("", defaultParams()); err == nil {
		t.Fatal("expected error for empty password")
	}
	if _, err := (crypt.BcryptHasher{Cost: bcrypt.MinCost}).Hash("  "); err == nil {
		t.Fatal("expected error for empty password")
	}
}

// Битый формат хэша
func TestVerifyPassword_InvalidFormat(t *testing.T) {
	if _, err := crypt.VerifyPassword("password", "not-a-valid-hash"); err == nil {
		t.Fatal("expected error for invalid hash format")
	}
}

// Соль разная, значит и хэши разные
func TestHashPassword_DifferentSalt(t *testing.T) {
	h1, _ := crypt.HashPassword("same-password", defaultParams())
	h2, _ := crypt.HashPassword("same-password", defaultParams())

	if h1 == h2 {
		t.Fatal("expected different hashes for same password")
	}
}

// bcrypt-хэш распознаётся по префиксу
func TestBcryptHasher_VerifyAutoDetect(t *testing.T) {
	var h crypt.PasswordHasher = crypt.BcryptHasher{Cost: bcrypt.MinCost}

	hash, err := h.Hash("Passw0rd1")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !strings.HasPrefix(hash, "$2a$") {
		t.Fatalf("unexpected hash format: %s", hash)
	}

	ok, err := crypt.VerifyPassword("Passw0rd1", hash)
	if err != nil || !ok {
		t.Fatalf("expected valid password, ok=%v err=%v", ok, err)
	}

	ok, err = crypt.VerifyPassword("Passw0rd2", hash)
	if err != nil || ok {
		t.Fatalf("expected invalid password, ok=%v err=%v", ok, err)
	}
}

func TestArgon2Hasher_Interface(t *testing.T) {
	var h crypt.PasswordHasher = crypt.Argon2Hasher{Params: defaultParams()}

	hash, err := h.Hash("Passw0rd1")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	ok, err := crypt.VerifyPassword("Passw0rd1", hash)
	if err != nil || !ok {
		t.Fatalf("expected valid password, ok=%v err=%v", ok, err)
	}
}
