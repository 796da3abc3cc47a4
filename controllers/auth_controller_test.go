package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/askeland/bildereise/models"
)

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewBuffer(data)
}

type authResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func registerUser(t *testing.T, r http.Handler, username, password string) authResponse {
	t.Helper()
	rec := doRequest(r, http.MethodPost, "/api/register", jsonBody(t, map[string]string{
		"username": username,
		"password": password,
		"fullName": "Kari Nordmann",
	}), map[string]string{"Content-Type": "application/json"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("register returned no token")
	}
	return resp
}

func TestRegisterValidation(t *testing.T) {
	r, _, _, _ := setupTestRouter(t)

	rec := doRequest(r, http.MethodPost, "/api/register", jsonBody(t, map[string]string{
		"username": "kari",
		"password": "kort",
	}), map[string]string{"Content-Type": "application/json"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("short password status = %d, want 400", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "Password must be at least 6 characters" {
		t.Errorf("message = %q", msg)
	}

	registerUser(t, r, "kari", "hemmelig")

	rec = doRequest(r, http.MethodPost, "/api/register", jsonBody(t, map[string]string{
		"username": "kari",
		"password": "hemmelig",
	}), map[string]string{"Content-Type": "application/json"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate status = %d, want 400", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "Username already exists" {
		t.Errorf("message = %q", msg)
	}
}

func TestRegisterDoesNotExposePasswordHash(t *testing.T) {
	r, _, _, _ := setupTestRouter(t)

	rec := doRequest(r, http.MethodPost, "/api/register", jsonBody(t, map[string]string{
		"username": "kari",
		"password": "hemmelig",
	}), map[string]string{"Content-Type": "application/json"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "passwordHash") || strings.Contains(rec.Body.String(), "PasswordHash") {
		t.Errorf("password hash leaked in response: %s", rec.Body.String())
	}
}

func TestLoginFlow(t *testing.T) {
	r, _, _, _ := setupTestRouter(t)
	registerUser(t, r, "kari", "hemmelig")

	rec := doRequest(r, http.MethodPost, "/api/login", jsonBody(t, map[string]string{
		"username": "kari",
		"password": "feilpassord",
	}), map[string]string{"Content-Type": "application/json"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password status = %d, want 401", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "Invalid username or password" {
		t.Errorf("message = %q", msg)
	}

	rec = doRequest(r, http.MethodPost, "/api/login", jsonBody(t, map[string]string{
		"username": "kari",
		"password": "hemmelig",
	}), map[string]string{"Content-Type": "application/json"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}

	rec = doRequest(r, http.MethodGet, "/api/user", nil, map[string]string{
		"Authorization": "Bearer " + resp.Token,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var me models.User
	if err := json.Unmarshal(rec.Body.Bytes(), &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.Username != "kari" {
		t.Errorf("me username = %q", me.Username)
	}
}

func TestLogoutBlacklistsToken(t *testing.T) {
	r, _, _, _ := setupTestRouter(t)
	resp := registerUser(t, r, "ola", "hemmelig")
	headers := map[string]string{"Authorization": "Bearer " + resp.Token}

	rec := doRequest(r, http.MethodPost, "/api/logout", nil, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(r, http.MethodGet, "/api/user", nil, headers)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("blacklisted token still accepted, status = %d", rec.Code)
	}
}

func TestUpdateProfileSanitizesBio(t *testing.T) {
	r, _, _, _ := setupTestRouter(t)
	resp := registerUser(t, r, "kari", "hemmelig")
	headers := map[string]string{
		"Authorization": "Bearer " + resp.Token,
		"Content-Type":  "application/json",
	}

	rec := doRequest(r, http.MethodPut, "/api/user/profile", jsonBody(t, map[string]string{
		"fullName": "Kari Nordmann",
		"email":    "kari@example.com",
		"bio":      `Fotograf <script>alert("x")</script> fra Bergen`,
	}), headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("profile update status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var user models.User
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if strings.Contains(user.Bio, "<script>") {
		t.Errorf("bio not sanitized: %q", user.Bio)
	}
	if !strings.Contains(user.Bio, "Fotograf") || !strings.Contains(user.Bio, "fra Bergen") {
		t.Errorf("bio text lost in sanitization: %q", user.Bio)
	}
	if user.Email != "kari@example.com" {
		t.Errorf("email = %q", user.Email)
	}
}

func TestUploadProfileImage(t *testing.T) {
	r, store, _, _ := setupTestRouter(t)
	resp := registerUser(t, r, "kari", "hemmelig")

	body, contentType := uploadBody(t, nil, "profileImage", "meg.jpg", "image/jpeg", jpegBytes(t, 300, 300))
	rec := doRequest(r, http.MethodPost, "/api/user/profile-image", body, map[string]string{
		"Authorization": "Bearer " + resp.Token,
		"Content-Type":  contentType,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("profile image status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var user models.User
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if !strings.HasPrefix(user.ProfileImage, "/uploads/") {
		t.Errorf("profile image path = %q", user.ProfileImage)
	}

	stored, err := store.GetUser(resp.User.ID)
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	if stored.ProfileImage != user.ProfileImage {
		t.Errorf("profile image not persisted: %q vs %q", stored.ProfileImage, user.ProfileImage)
	}
}

func TestUploadProfileImageRejectsNonImage(t *testing.T) {
	r, _, _, _ := setupTestRouter(t)
	resp := registerUser(t, r, "kari", "hemmelig")

	body, contentType := uploadBody(t, nil, "profileImage", "cv.txt", "text/plain", []byte("bare tekst"))
	rec := doRequest(r, http.MethodPost, "/api/user/profile-image", body, map[string]string{
		"Authorization": "Bearer " + resp.Token,
		"Content-Type":  contentType,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "Only image files are allowed!" {
		t.Errorf("message = %q", msg)
	}
}

func TestUploadProfileImageRejectsOversizeFile(t *testing.T) {
	r, store, _, uploads := setupTestRouter(t)
	resp := registerUser(t, r, "kari", "hemmelig")

	payload := bytes.Repeat([]byte{0xff}, 1<<20+1)
	body, contentType := uploadBody(t, nil, "profileImage", "meg.jpg", "image/jpeg", payload)
	rec := doRequest(r, http.MethodPost, "/api/user/profile-image", body, map[string]string{
		"Authorization": "Bearer " + resp.Token,
		"Content-Type":  contentType,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "Image too large (max 1 MB)" {
		t.Errorf("message = %q", msg)
	}

	stored, err := store.GetUser(resp.User.ID)
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	if stored.ProfileImage != "" {
		t.Errorf("profile image set despite rejected upload: %q", stored.ProfileImage)
	}

	// Profile images land directly in the uploads root; nothing may
	// survive a rejected upload there.
	entries, err := os.ReadDir(uploads)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			t.Errorf("file persisted for oversize upload: %s", e.Name())
		}
	}
}

func TestUpdatePassword(t *testing.T) {
	r, _, _, _ := setupTestRouter(t)
	resp := registerUser(t, r, "kari", "hemmelig")
	headers := map[string]string{
		"Authorization": "Bearer " + resp.Token,
		"Content-Type":  "application/json",
	}

	rec := doRequest(r, http.MethodPut, "/api/user/password", jsonBody(t, map[string]string{
		"currentPassword": "feil",
		"newPassword":     "nyttpassord",
	}), headers)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("wrong current password status = %d, want 400", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "Current password is incorrect" {
		t.Errorf("message = %q", msg)
	}

	rec = doRequest(r, http.MethodPut, "/api/user/password", jsonBody(t, map[string]string{
		"currentPassword": "hemmelig",
		"newPassword":     "nyttpassord",
	}), headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("password update status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(r, http.MethodPost, "/api/login", jsonBody(t, map[string]string{
		"username": "kari",
		"password": "nyttpassord",
	}), map[string]string{"Content-Type": "application/json"})
	if rec.Code != http.StatusOK {
		t.Errorf("login with new password status = %d", rec.Code)
	}
}

func TestUpdateTheme(t *testing.T) {
	r, _, _, _ := setupTestRouter(t)
	resp := registerUser(t, r, "kari", "hemmelig")
	headers := map[string]string{
		"Authorization": "Bearer " + resp.Token,
		"Content-Type":  "application/json",
	}

	rec := doRequest(r, http.MethodPut, "/api/user/theme", jsonBody(t, map[string]string{"mode": "neon"}), headers)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid theme status = %d, want 400", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "Invalid theme mode" {
		t.Errorf("message = %q", msg)
	}

	rec = doRequest(r, http.MethodPut, "/api/user/theme", jsonBody(t, map[string]string{"mode": "dark"}), headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("theme update status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var user models.User
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if user.DarkMode != "dark" {
		t.Errorf("theme = %q, want dark", user.DarkMode)
	}
}
