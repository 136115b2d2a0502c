package utils_test

import (
	"testing"
	"time"

	"github.com/sangkips/pharmapos-api/pkg/utils"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := utils.NewJWTManager("counter-secret", "pharmapos")

	token, err := m.GenerateAccessToken("user-7", "Meera", []string{"cashier"}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	claims, err := m.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	if claims.UserID != "user-7" || claims.Name != "Meera" || claims.Subject != "user-7" {
		t.Fatalf("claims = %+v", claims)
	}
	if !claims.HasRole("admin", "cashier") || claims.HasRole("admin") {
		t.Fatalf("HasRole mismatch for roles %v", claims.Roles)
	}
}

func TestJWTManager_Rejects(t *testing.T) {
	issuer := utils.NewJWTManager("counter-secret", "pharmapos")

	valid, err := issuer.GenerateAccessToken("user-7", "", nil, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	expired, err := issuer.GenerateAccessToken("user-7", "", nil, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	cases := []struct {
		name    string
		manager *utils.JWTManager
		token   string
	}{
		{"wrong secret", utils.NewJWTManager("other-secret", "pharmapos"), valid},
		{"wrong issuer", utils.NewJWTManager("counter-secret", "someone-else"), valid},
		{"expired", issuer, expired},
		{"garbage", issuer, "not.a.token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.manager.ValidateAccessToken(tc.token); err == nil {
				t.Fatalf("expected token to be rejected")
			}
		})
	}
}
