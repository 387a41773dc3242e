//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestHistoryRecordsGenerations(t *testing.T) {
	env := SetupTestEnv(t)
	email := uniqueEmail("hist")
	RegisterUser(t, env, email, "password123")
	token := LoginUser(t, env, email, "password123")

	resp := DoRequest(t, env, "POST", "/api/v1/generate", generateBody(), token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("generate failed: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = DoRequest(t, env, "GET", "/api/v1/history", nil, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("history failed: status %d", resp.StatusCode)
	}
	data := ParseResponse(t, resp)["data"].(map[string]any)
	items := data["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected 1 history item, got %d", len(items))
	}

	item := items[0].(map[string]any)
	copies := item["copies"].([]any)
	if len(copies) != 3 {
		t.Fatalf("expected 3 copies in history, got %d", len(copies))
	}
	first := copies[0].(map[string]any)
	if first["id"] == "" || first["text"] == "" {
		t.Fatalf("history copy missing id or text: %v", first)
	}
}

func TestFavoriteToggleRoundTrip(t *testing.T) {
	env := SetupTestEnv(t)
	email := uniqueEmail("fav")
	RegisterUser(t, env, email, "password123")
	token := LoginUser(t, env, email, "password123")

	resp := DoRequest(t, env, "POST", "/api/v1/generate", generateBody(), token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("generate failed: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = DoRequest(t, env, "GET", "/api/v1/history", nil, token)
	data := ParseResponse(t, resp)["data"].(map[string]any)
	item := data["items"].([]any)[0].(map[string]any)
	copyEntry := item["copies"].([]any)[0].(map[string]any)
	copyID := copyEntry["id"].(string)
	text := copyEntry["text"].(string)

	// Pin
	resp = DoRequest(t, env, "POST", "/api/v1/favorites/toggle",
		map[string]string{"copy_id": copyID, "text": text}, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("toggle failed: status %d", resp.StatusCode)
	}
	toggled := ParseResponse(t, resp)["data"].(map[string]any)
	if toggled["favorited"] != true {
		t.Fatalf("expected favorited=true")
	}

	resp = DoRequest(t, env, "GET", "/api/v1/favorites", nil, token)
	favData := ParseResponse(t, resp)["data"].(map[string]any)
	favs := favData["favorites"].([]any)
	if len(favs) != 1 {
		t.Fatalf("expected 1 favorite, got %d", len(favs))
	}

	// Unpin
	resp = DoRequest(t, env, "POST", "/api/v1/favorites/toggle",
		map[string]string{"copy_id": copyID, "text": text}, token)
	toggled = ParseResponse(t, resp)["data"].(map[string]any)
	if toggled["favorited"] != false {
		t.Fatalf("expected favorited=false after second toggle")
	}

	resp = DoRequest(t, env, "GET", "/api/v1/favorites", nil, token)
	favData = ParseResponse(t, resp)["data"].(map[string]any)
	if len(favData["favorites"].([]any)) != 0 {
		t.Fatalf("expected no favorites after unpin")
	}
}
