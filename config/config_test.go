package config

import (
	"sync"
	"testing"
)

func TestLoadConcurrent(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("APP_PORT", "9191")

	const workers = 8
	results := make([]AppConfig, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Load()
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		if got.JWTSecret != "test-secret" {
			t.Fatalf("worker %d: JWTSecret = %q", i, got.JWTSecret)
		}
		if got.AppPort != "9191" {
			t.Errorf("worker %d: AppPort = %q, want env override", i, got.AppPort)
		}
	}

	// Defaults applied once, visible to everyone.
	loaded := Get()
	if loaded.GalleryMaxSizeMB != 10 || loaded.ProfileImageMaxSizeMB != 1 {
		t.Errorf("upload caps = %d/%d, want defaults 10/1", loaded.GalleryMaxSizeMB, loaded.ProfileImageMaxSizeMB)
	}
	if loaded.MaxImageDimension != 2000 || loaded.ThumbnailSize != 200 {
		t.Errorf("image bounds = %d/%d, want defaults 2000/200", loaded.MaxImageDimension, loaded.ThumbnailSize)
	}
}

func TestSetForTestingOverridesCache(t *testing.T) {
	SetForTesting(AppConfig{JWTSecret: "other-secret", AppPort: "7070"})

	got := Get()
	if got.JWTSecret != "other-secret" || got.AppPort != "7070" {
		t.Errorf("Get() = %+v, want the injected config", got)
	}
}
