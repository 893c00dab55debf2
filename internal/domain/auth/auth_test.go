package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndParseToken(t *testing.T) {
	secret := "test-secret"
	claims := Claims{UserID: "u1", RoleName: RoleDepotHR, Depot: "Batangas"}

	token, err := GenerateToken(secret, claims, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	parsed, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if parsed.UserID != claims.UserID || parsed.RoleName != claims.RoleName || parsed.Depot != claims.Depot {
		t.Fatalf("claims mismatch: %+v", parsed)
	}
	if !parsed.User().DepotScoped() {
		t.Fatal("expected depot HR to be depot scoped")
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret-a", Claims{UserID: "u1", RoleName: RoleHR}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := ParseToken("secret-b", token); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := GenerateToken("secret", Claims{UserID: "u1", RoleName: RoleHR}, -time.Minute)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := ParseToken("secret", token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestParseTokenRejectsOtherAlgorithms(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{UserID: "u1"})
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}
	if _, err := ParseToken("secret", signed); err == nil {
		t.Fatal("expected HS512 token to be rejected")
	}
}

func TestRolePermissionsSubset(t *testing.T) {
	allowed := map[string]struct{}{}
	for _, perm := range DefaultPermissions {
		allowed[perm] = struct{}{}
	}

	for role, perms := range RolePermissions {
		if len(perms) == 0 {
			t.Fatalf("role %s has no permissions", role)
		}
		for _, perm := range perms {
			if _, ok := allowed[perm]; !ok {
				t.Fatalf("role %s has unknown permission %s", role, perm)
			}
		}
	}
}

func TestStaticPermissions(t *testing.T) {
	perms := NewStaticPermissions(RolePermissions)
	ctx := context.Background()

	if ok, _ := perms.HasPermission(ctx, RoleHR, PermRequirementsRequest); !ok {
		t.Fatal("expected HR to create requests")
	}
	if ok, _ := perms.HasPermission(ctx, RoleDepotHR, PermRequirementsRequest); ok {
		t.Fatal("depot HR should not create requests")
	}
	if ok, _ := perms.HasPermission(ctx, RoleEmployee, PermRequirementsValidate); ok {
		t.Fatal("employees should not validate")
	}
	for _, perm := range DefaultPermissions {
		if ok, _ := perms.HasPermission(ctx, RoleHRAdmin, perm); !ok {
			t.Fatalf("expected HR Admin to hold %s", perm)
		}
	}
	if ok, _ := perms.HasPermission(ctx, "Contractor", PermRequirementsRead); ok {
		t.Fatal("unknown roles have no permissions")
	}
}
