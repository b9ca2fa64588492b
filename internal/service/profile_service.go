package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"camphub-be/internal/domain"
	"camphub-be/internal/repository"
)

// RepoProfileService serves profiles from the local snapshot table.
type RepoProfileService struct {
	repo repository.ProfileRepository
}

func NewRepoProfileService(repo repository.ProfileRepository) *RepoProfileService {
	return &RepoProfileService{repo: repo}
}

func (s *RepoProfileService) GetProfile(ctx context.Context, userID string) (*domain.ApplicantProfile, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// HTTPProfileService fetches profiles from the external profile service.
// Used when PROFILE_SERVICE_URL is configured.
type HTTPProfileService struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPProfileService(baseURL string) *HTTPProfileService {
	return &HTTPProfileService{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *HTTPProfileService) GetProfile(ctx context.Context, userID string) (*domain.ApplicantProfile, error) {
	endpoint := fmt.Sprintf("%s/profiles/%s", s.baseURL, url.PathEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build profile request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("profile service returned status %d", resp.StatusCode)
	}

	var profile domain.ApplicantProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	profile.UserID = userID
	return &profile, nil
}
