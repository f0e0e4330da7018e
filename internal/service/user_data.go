package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/trackmyoffer/bff/internal/domain"
	"github.com/trackmyoffer/bff/internal/dto"
	"github.com/trackmyoffer/bff/internal/upstream"
	"go.uber.org/zap"
)

// UserDataService implements the export and delete operations that span several
// feature-service calls. Calls run sequentially; the first failure aborts the operation.
type UserDataService struct {
	client    UserDataClient
	directory *ProfileDirectory
	activity  *ActivityTracker
	logger    *zap.Logger
}

// NewUserDataService creates a new user data service
func NewUserDataService(client UserDataClient, directory *ProfileDirectory, activity *ActivityTracker, logger *zap.Logger) *UserDataService {
	return &UserDataService{
		client:    client,
		directory: directory,
		activity:  activity,
		logger:    logger,
	}
}

type userData struct {
	profile    []byte
	education  []json.RawMessage
	experience []json.RawMessage
}

// Export gathers the profile with its education and experience entries
func (s *UserDataService) Export(ctx context.Context, profileID int64) (*dto.ExportResponse, error) {
	data, err := s.fetch(ctx, profileID)
	if err != nil {
		return nil, err
	}

	export := &dto.ExportResponse{
		Education:  data.education,
		Experience: data.experience,
	}
	if json.Valid(data.profile) {
		export.Profile = data.profile
	}

	return export, nil
}

// Delete removes every education and experience entry, then the profile itself. Entries
// deleted before a failure stay deleted. After a full deletion the directory entry and
// activity data of the user are dropped as well.
func (s *UserDataService) Delete(ctx context.Context, identity domain.Authenticated) error {
	data, err := s.fetch(ctx, identity.ProfileID)
	if err != nil {
		return err
	}

	educationIDs, err := entryIDs(data.education)
	if err != nil {
		return fmt.Errorf("failed to read education entries: %w", err)
	}
	experienceIDs, err := entryIDs(data.experience)
	if err != nil {
		return fmt.Errorf("failed to read experience entries: %w", err)
	}

	for _, educationID := range educationIDs {
		resp, err := s.client.DeleteEducation(ctx, identity.ProfileID, educationID)
		if err := checkResponse("delete education", resp, err); err != nil {
			return err
		}
	}

	for _, experienceID := range experienceIDs {
		resp, err := s.client.DeleteExperience(ctx, identity.ProfileID, experienceID)
		if err := checkResponse("delete experience", resp, err); err != nil {
			return err
		}
	}

	resp, err := s.client.DeleteProfile(ctx, identity.ProfileID)
	if err := checkResponse("delete profile", resp, err); err != nil {
		return err
	}

	if err := s.directory.Forget(ctx, identity.Email); err != nil {
		return fmt.Errorf("profile deleted but directory entry remains: %w", err)
	}
	if err := s.activity.Forget(ctx, identity.Email); err != nil {
		s.logger.Warn("failed to delete activity data", zap.String("email", identity.Email), zap.Error(err))
	}

	s.logger.Info("user deleted", zap.String("email", identity.Email), zap.Int64("profile_id", identity.ProfileID))

	return nil
}

func (s *UserDataService) fetch(ctx context.Context, profileID int64) (*userData, error) {
	profile, err := s.client.GetProfile(ctx, profileID)
	if err := checkResponse("get profile", profile, err); err != nil {
		return nil, err
	}

	educations, err := s.client.ListEducations(ctx, profileID)
	if err := checkResponse("list educations", educations, err); err != nil {
		return nil, err
	}

	experiences, err := s.client.ListExperiences(ctx, profileID)
	if err := checkResponse("list experiences", experiences, err); err != nil {
		return nil, err
	}

	return &userData{
		profile:    profile.Body,
		education:  decodeList(educations.Body),
		experience: decodeList(experiences.Body),
	}, nil
}

func checkResponse(op string, resp *upstream.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return resp.Err(op)
}

// decodeList returns the elements of a JSON array, or an empty list for anything else
func decodeList(body []byte) []json.RawMessage {
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil || items == nil {
		return []json.RawMessage{}
	}
	return items
}

func entryIDs(items []json.RawMessage) ([]int64, error) {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		payload := dto.Payload{}
		if err := json.Unmarshal(item, &payload); err != nil {
			return nil, err
		}
		entryID, err := payload.Int64("id")
		if err != nil {
			return nil, err
		}
		ids = append(ids, entryID)
	}
	return ids, nil
}
