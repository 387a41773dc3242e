//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func generateBody() map[string]any {
	return map[string]any{
		"image_url":         "https://img.copysnap.test/product.jpg",
		"image_description": "leather backpack",
		"target_audience":   "young adults",
		"include_emojis":    true,
	}
}

func TestGenerateReturnsThreeCopies(t *testing.T) {
	env := SetupTestEnv(t)
	email := uniqueEmail("gen")
	RegisterUser(t, env, email, "password123")
	token := LoginUser(t, env, email, "password123")

	resp := DoRequest(t, env, "POST", "/api/v1/generate", generateBody(), token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("generate failed: status %d", resp.StatusCode)
	}
	data := ParseResponse(t, resp)["data"].(map[string]any)
	copies := data["copies"].([]any)
	if len(copies) != 3 {
		t.Fatalf("expected 3 copies, got %d", len(copies))
	}
}

func TestGenerateRequiresImageURL(t *testing.T) {
	env := SetupTestEnv(t)
	email := uniqueEmail("noimg")
	RegisterUser(t, env, email, "password123")
	token := LoginUser(t, env, email, "password123")

	resp := DoRequest(t, env, "POST", "/api/v1/generate", map[string]any{}, token)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestDailyQuotaEnforced(t *testing.T) {
	env := SetupTestEnv(t)
	email := uniqueEmail("quota")
	RegisterUser(t, env, email, "password123")
	token := LoginUser(t, env, email, "password123")

	for i := 0; i < testQuota.FreeDaily; i++ {
		resp := DoRequest(t, env, "POST", "/api/v1/generate", generateBody(), token)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("generation %d failed: status %d", i+1, resp.StatusCode)
		}
		resp.Body.Close()
	}

	resp := DoRequest(t, env, "POST", "/api/v1/generate", generateBody(), token)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after quota exhausted, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUsageStatusTracksConsumption(t *testing.T) {
	env := SetupTestEnv(t)
	email := uniqueEmail("usage")
	RegisterUser(t, env, email, "password123")
	token := LoginUser(t, env, email, "password123")

	resp := DoRequest(t, env, "POST", "/api/v1/generate", generateBody(), token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("generate failed: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = DoRequest(t, env, "GET", "/api/v1/usage", nil, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("usage failed: status %d", resp.StatusCode)
	}
	status := ParseResponse(t, resp)["data"].(map[string]any)
	if status["used_today"].(float64) != 1 {
		t.Fatalf("expected used_today=1, got %v", status["used_today"])
	}
	if int(status["daily_quota"].(float64)) != testQuota.FreeDaily {
		t.Fatalf("expected daily_quota=%d, got %v", testQuota.FreeDaily, status["daily_quota"])
	}
}
