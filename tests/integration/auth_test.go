//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestRegisterLoginMe(t *testing.T) {
	env := SetupTestEnv(t)
	email := uniqueEmail("auth")

	result := RegisterUser(t, env, email, "password123")
	data := result["data"].(map[string]any)
	profile := data["profile"].(map[string]any)
	if profile["email"] != email {
		t.Fatalf("expected email %s, got %v", email, profile["email"])
	}
	if profile["is_pro"] != false {
		t.Fatalf("new users must start on the free tier")
	}

	token := LoginUser(t, env, email, "password123")

	resp := DoRequest(t, env, "GET", "/api/v1/me", nil, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me failed: status %d", resp.StatusCode)
	}
	me := ParseResponse(t, resp)["data"].(map[string]any)
	if me["email"] != email {
		t.Fatalf("expected email %s, got %v", email, me["email"])
	}
	if me["is_admin"] != false {
		t.Fatalf("regular user must not be admin")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	env := SetupTestEnv(t)
	email := uniqueEmail("wrongpw")
	RegisterUser(t, env, email, "password123")

	resp := DoRequest(t, env, "POST", "/api/v1/auth/login",
		map[string]string{"email": email, "password": "not-the-password"}, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestDuplicateRegistration(t *testing.T) {
	env := SetupTestEnv(t)
	email := uniqueEmail("dup")
	RegisterUser(t, env, email, "password123")

	resp := DoRequest(t, env, "POST", "/api/v1/auth/register",
		map[string]string{"email": email, "password": "password123"}, "")
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	env := SetupTestEnv(t)

	resp := DoRequest(t, env, "GET", "/api/v1/me", nil, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestCompleteProfile(t *testing.T) {
	env := SetupTestEnv(t)
	email := uniqueEmail("complete")
	RegisterUser(t, env, email, "password123")
	token := LoginUser(t, env, email, "password123")

	resp := DoRequest(t, env, "POST", "/api/v1/me/complete", nil, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("complete failed: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = DoRequest(t, env, "GET", "/api/v1/me", nil, token)
	me := ParseResponse(t, resp)["data"].(map[string]any)
	if me["profile_completed"] != true {
		t.Fatalf("profile_completed not set")
	}
}
