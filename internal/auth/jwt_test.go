package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestInitJWTSecretRequiresEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if err := InitJWTSecret(); err == nil {
		t.Fatal("expected an error when JWT_SECRET is unset")
	}
}

func TestGenerateAndVerifyRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	if err := InitJWTSecret(); err != nil {
		t.Fatalf("InitJWTSecret: %v", err)
	}

	tokenString, err := GenerateJWT(42, "user@example.com")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	token, err := VerifyJWT(tokenString)
	if err != nil {
		t.Fatalf("VerifyJWT: %v", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatalf("claims type = %T", token.Claims)
	}
	if claims["email"] != "user@example.com" {
		t.Fatalf("email claim = %v", claims["email"])
	}
	if uint(claims["user_id"].(float64)) != 42 {
		t.Fatalf("user_id claim = %v", claims["user_id"])
	}
}

func TestVerifyRejectsTokenSignedWithOtherSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "first-secret")
	if err := InitJWTSecret(); err != nil {
		t.Fatalf("InitJWTSecret: %v", err)
	}

	tokenString, err := GenerateJWT(1, "user@example.com")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	t.Setenv("JWT_SECRET", "second-secret")
	if err := InitJWTSecret(); err != nil {
		t.Fatalf("InitJWTSecret: %v", err)
	}

	if _, err := VerifyJWT(tokenString); err == nil {
		t.Fatal("expected a token signed under the old secret to be rejected")
	}
}
