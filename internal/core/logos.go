package core

import (
	"context"
	"errors"
	"fmt"
	"io"

	"venturecore/internal/blob"
)

func logoKey(userID string) string {
	return "logos/" + userID
}

// PutLogo uploads the user's logo image into its blob slot, replacing any
// previous upload.
func (s *Service) PutLogo(ctx context.Context, userID string, r io.Reader, contentType string) (blob.Info, error) {
	var info blob.Info
	err := s.run(ctx, "put_logo", func(ctx context.Context) error {
		if s.blobs == nil {
			return fmt.Errorf("no blob store configured")
		}
		if _, ok := s.store.GetUser(userID); !ok {
			return ErrNotFound{Entity: EntityUser, ID: userID}
		}
		out, err := s.blobs.Put(ctx, logoKey(userID), r, blob.PutOptions{
			ContentType: contentType,
			Metadata:    map[string]string{"user_id": userID},
		})
		if err != nil {
			return fmt.Errorf("store logo: %w", err)
		}
		info = out
		return nil
	})
	return info, err
}

// GetLogo streams the user's logo slot. The second return is false when no
// logo has been uploaded.
func (s *Service) GetLogo(ctx context.Context, userID string) (blob.Info, io.ReadCloser, bool, error) {
	if s.blobs == nil {
		return blob.Info{}, nil, false, fmt.Errorf("no blob store configured")
	}
	info, rc, err := s.blobs.Get(ctx, logoKey(userID))
	if errors.Is(err, blob.ErrNotFound) {
		return blob.Info{}, nil, false, nil
	}
	if err != nil {
		return blob.Info{}, nil, false, fmt.Errorf("load logo: %w", err)
	}
	return info, rc, true, nil
}

// DeleteLogo clears the user's logo slot. Deleting an empty slot reports
// false without error.
func (s *Service) DeleteLogo(ctx context.Context, userID string) (bool, error) {
	var deleted bool
	err := s.run(ctx, "delete_logo", func(ctx context.Context) error {
		if s.blobs == nil {
			return fmt.Errorf("no blob store configured")
		}
		ok, err := s.blobs.Delete(ctx, logoKey(userID))
		if err != nil {
			return fmt.Errorf("delete logo: %w", err)
		}
		deleted = ok
		return nil
	})
	return deleted, err
}
