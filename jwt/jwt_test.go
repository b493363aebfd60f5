package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

func TestCreateAndValidate(t *testing.T) {
	token, err := Create(NewClaims("user-1", "editor", time.Hour), "secret")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	claims, err := Validate(token, "secret")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Subject != "user-1" || claims.Role != "editor" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if _, err := Validate(token, "other"); err == nil {
		t.Fatalf("wrong secret should fail")
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	token, err := Create(NewClaims("user-1", "admin", -time.Minute), "secret")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := Validate(token, "secret"); err == nil {
		t.Fatalf("expired token should fail")
	}
}

func TestValidateRejectsUnsigned(t *testing.T) {
	unsigned := gojwt.NewWithClaims(gojwt.SigningMethodNone, NewClaims("user-1", "admin", time.Hour))
	token, err := unsigned.SignedString(gojwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := Validate(token, "secret"); err == nil {
		t.Fatalf("none algorithm should fail")
	}
}

func TestCreateRequiresSecret(t *testing.T) {
	if _, err := Create(NewClaims("user-1", "admin", time.Hour), ""); err == nil {
		t.Fatalf("empty secret should fail")
	}
}
