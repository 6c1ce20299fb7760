package main

import (
	"testing"
	"time"

	"github.com/Krimson/sportscan/internal/media"
	"github.com/Krimson/sportscan/pkg/models"
)

func TestReadTimeoutCoversMaxUpload(t *testing.T) {
	tests := []struct {
		profile models.Profile
		want    time.Duration
	}{
		{models.ProfileUmpire, 100 * time.Second},
		{models.ProfileExercise, 860 * time.Second},
	}

	for _, tt := range tests {
		policy := media.PolicyFor(tt.profile, 0)
		got := readTimeoutFor(policy.MaxBytes)
		if got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.profile, tt.want, got)
		}

		// файл максимального размера на минимальной скорости должен успеть загрузиться
		transfer := time.Duration(policy.MaxBytes/minUploadRate) * time.Second
		if got < transfer {
			t.Errorf("%s: read timeout %v shorter than upload time %v", tt.profile, got, transfer)
		}
	}
}

func TestSplitOrigins(t *testing.T) {
	got := splitOrigins(" http://a.test , ,http://b.test")
	if len(got) != 2 || got[0] != "http://a.test" || got[1] != "http://b.test" {
		t.Errorf("Expected two trimmed origins, got %v", got)
	}
}
