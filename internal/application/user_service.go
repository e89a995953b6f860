package application

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tiktok-clone-auth/internal/domain/entity"
	"github.com/oksasatya/tiktok-clone-auth/internal/domain/event"
	repo "github.com/oksasatya/tiktok-clone-auth/internal/domain/repository"
	"github.com/oksasatya/tiktok-clone-auth/pkg/helpers"
)

// UserService implements profile reads and mutations plus user search.
type UserService struct {
	Users        repo.UserRepository
	Events       EventPublisher
	Logger       *logrus.Logger
	GCS          *storage.Client
	GCSBucket    string
	ES           *elasticsearch.Client
	ESUsersIndex string
}

func (s *UserService) publish(ctx context.Context, ev event.Event) {
	if s.Events == nil || ev == nil {
		return
	}
	msg := map[string]any{"event": ev.Name(), "payload": ev}
	if err := s.Events.PublishJSON(ctx, msg); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("event", ev.Name()).Warn("event publish failed")
	}
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	u, err := s.Users.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// apply runs an aggregate mutator, persists on change, and publishes the
// resulting event. The no-change case skips the write entirely.
func (s *UserService) apply(ctx context.Context, userID string, mutate func(*entity.User) (event.Event, error)) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	ev, err := mutate(u)
	if err != nil {
		return nil, wrapDomain(err)
	}
	if ev == nil {
		return u, nil
	}
	if err := s.Users.Update(ctx, u); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return nil, ErrUsernameUsed
		}
		return nil, ErrUserUpdate
	}
	s.publish(ctx, ev)
	s.IndexUser(ctx, u)
	return u, nil
}

func (s *UserService) ChangeName(ctx context.Context, userID, name string) (*entity.User, error) {
	return s.apply(ctx, userID, func(u *entity.User) (event.Event, error) { return u.ChangeName(name) })
}

func (s *UserService) ChangeBio(ctx context.Context, userID, bio string) (*entity.User, error) {
	return s.apply(ctx, userID, func(u *entity.User) (event.Event, error) { return u.ChangeBio(bio) })
}

func (s *UserService) ChangeAvatar(ctx context.Context, userID, avatarURL string) (*entity.User, error) {
	return s.apply(ctx, userID, func(u *entity.User) (event.Event, error) { return u.ChangeAvatar(avatarURL) })
}

// ChangeUsername takes the new handle only if nobody else holds it. The
// availability check is advisory; the unique index has the final word and
// a lost race surfaces as USERNAME_USED from the write. A request the
// aggregate refuses or ignores, an invalid handle or the current one
// resubmitted, fails with USERNAME_CHANGE_FAILED.
func (s *UserService) ChangeUsername(ctx context.Context, userID, username string) (*entity.User, error) {
	candidate := strings.ToLower(strings.TrimSpace(username))
	if candidate != "" && entity.IsValidUsername(candidate) {
		if other, err := s.Users.GetByUsername(ctx, candidate); err == nil && other.ID != userID {
			return nil, ErrUsernameUsed
		}
	}
	return s.apply(ctx, userID, func(u *entity.User) (event.Event, error) {
		ev, err := u.ChangeUsername(username)
		if err != nil {
			return nil, err
		}
		if ev == nil {
			return nil, ErrUsernameChange
		}
		return ev, nil
	})
}

// ChangeUsernameByEmail serves the onboarding step where the client still
// identifies the account by email.
func (s *UserService) ChangeUsernameByEmail(ctx context.Context, email, username string) (*entity.User, error) {
	u, err := s.Users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, ErrUserNotFound
	}
	return s.ChangeUsername(ctx, u.ID, username)
}

// CheckUsername reports whether the handle is valid and free.
func (s *UserService) CheckUsername(ctx context.Context, username string) (bool, error) {
	candidate := strings.ToLower(strings.TrimSpace(username))
	if !entity.IsValidUsername(candidate) {
		return false, wrapDomain(entity.ErrInvalidUsernameFormat)
	}
	_, err := s.Users.GetByUsername(ctx, candidate)
	if errors.Is(err, repo.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

// CheckBirthDate validates the age requirement without creating anything.
func (s *UserService) CheckBirthDate(birthDate time.Time) error {
	if !entity.IsValidBirthDate(birthDate, time.Now().UTC()) {
		return wrapDomain(entity.ErrInvalidBirthDate)
	}
	return nil
}

func (s *UserService) Verify(ctx context.Context, userID string) (*entity.User, error) {
	return s.apply(ctx, userID, func(u *entity.User) (event.Event, error) { return u.Verify(), nil })
}

func (s *UserService) UnVerify(ctx context.Context, userID string) (*entity.User, error) {
	return s.apply(ctx, userID, func(u *entity.User) (event.Event, error) { return u.UnVerify(), nil })
}

// UploadAvatar streams an image to GCS and points the profile at the
// public URL.
func (s *UserService) UploadAvatar(ctx context.Context, userID string, r io.Reader, filename, contentType string) (string, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return "", errors.New("gcs not configured")
	}
	if _, err := s.Users.GetByID(ctx, userID); err != nil {
		return "", ErrUserNotFound
	}
	id := uuid.NewString()
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", userID, id+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", err
	}
	if _, err := s.ChangeAvatar(ctx, userID, url); err != nil {
		return "", err
	}
	return url, nil
}

// IndexUser mirrors the user document into Elasticsearch. Indexing is
// best effort; search falls back to the database when the index lags.
func (s *UserService) IndexUser(ctx context.Context, u *entity.User) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return
	}
	doc := map[string]any{
		"id":         u.ID,
		"username":   u.Username,
		"name":       u.Name,
		"bio":        u.Bio,
		"avatar_url": u.AvatarURL,
		"verified":   u.IsVerified,
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": u.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: u.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
}

// Search matches usernames and display names. Elasticsearch serves the
// query when configured; otherwise the database fallback handles it.
func (s *UserService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if size <= 0 || size > 50 {
		size = 10
	}
	if s.ES == nil || s.ESUsersIndex == "" {
		return s.searchDB(ctx, q, size)
	}

	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"username^2", "name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESUsersIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return s.searchDB(ctx, q, size)
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

func (s *UserService) searchDB(ctx context.Context, q string, size int) ([]map[string]any, error) {
	users, err := s.Users.Search(ctx, q, size)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(users))
	for _, u := range users {
		out = append(out, map[string]any{
			"id":         u.ID,
			"username":   u.Username,
			"name":       u.Name,
			"bio":        u.Bio,
			"avatar_url": u.AvatarURL,
			"verified":   u.IsVerified,
		})
	}
	return out, nil
}
