package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/osokin/talkie/internal/errs"
)

func TestSendCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["action"] != "send_code" || body["phone"] != "79031234567" {
			t.Errorf("body = %v", body)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "dev_code": "123456"})
	}))
	defer srv.Close()

	dev, err := New(srv.URL).SendCode(context.Background(), "79031234567")
	if err != nil {
		t.Fatal(err)
	}
	if dev != "123456" {
		t.Fatalf("dev code = %q", dev)
	}
}

func TestVerifyCodeOutcomes(t *testing.T) {
	var reply func(w http.ResponseWriter)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reply(w)
	}))
	defer srv.Close()
	c := New(srv.URL)
	ctx := context.Background()

	// Known identity.
	reply = func(w http.ResponseWriter) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true, "user_exists": true,
			"user": map[string]any{"id": 42, "nickname": "Боб", "username": "bob"},
		})
	}
	id, err := c.VerifyCode(ctx, "79031234567", "123456")
	if err != nil || id == nil || id.ID != 42 || id.Username != "bob" {
		t.Fatalf("known: id=%+v err=%v", id, err)
	}

	// Accepted, no account yet.
	reply = func(w http.ResponseWriter) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "user_exists": false})
	}
	id, err = c.VerifyCode(ctx, "79031234567", "123456")
	if err != nil || id != nil {
		t.Fatalf("absent: id=%v err=%v", id, err)
	}

	// Refused code.
	reply = func(w http.ResponseWriter) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "Invalid or expired code"})
	}
	_, err = c.VerifyCode(ctx, "79031234567", "000000")
	if !errors.Is(err, errs.ErrCodeRejected) {
		t.Fatalf("refused: err = %v", err)
	}
}

func TestCreateProfileSurfacesServiceMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "Nickname or username already taken"})
	}))
	defer srv.Close()

	_, err := New(srv.URL).CreateProfile(context.Background(), "79031234567", "Анна", "anna_k")
	var se *errs.ServiceError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want ServiceError", err)
	}
	if se.Message != "Nickname or username already taken" {
		t.Fatalf("message = %q, not verbatim", se.Message)
	}
}

func TestCallerHeaderAndQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/friends" && r.Method == http.MethodGet:
			if r.Header.Get("X-User-Id") != "42" {
				t.Errorf("X-User-Id = %q", r.Header.Get("X-User-Id"))
			}
			_, _ = w.Write([]byte(`[]`))
		case r.URL.Path == "/users" && r.Method == http.MethodGet:
			if got := r.URL.Query().Get("search"); got != "боб и ко" {
				t.Errorf("search = %q", got)
			}
			_, _ = w.Write([]byte(`[{"id":99,"nickname":"Bob","username":"bob"}]`))
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()
	c := New(srv.URL)
	ctx := context.Background()

	friends, err := c.ListFriends(ctx, 42)
	if err != nil || len(friends) != 0 {
		t.Fatalf("friends = %v, %v", friends, err)
	}
	users, err := c.SearchUsers(ctx, "боб и ко")
	if err != nil || len(users) != 1 || users[0].ID != 99 {
		t.Fatalf("users = %v, %v", users, err)
	}
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listens anymore

	_, err := New(srv.URL).ListFriends(context.Background(), 42)
	if !errors.Is(err, errs.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}
