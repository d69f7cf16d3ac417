package gallery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memberportal/internal/roster"
)

func TestNormalizeDriveLink(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"file sharing link",
			"https://drive.google.com/file/d/1AbCdEfG/view?usp=sharing",
			"https://drive.google.com/uc?export=view&id=1AbCdEfG",
		},
		{
			"open link",
			"https://drive.google.com/open?id=1AbCdEfG&authuser=0",
			"https://drive.google.com/uc?export=view&id=1AbCdEfG",
		},
		{
			"bare uc id link",
			"https://drive.google.com/uc?id=1AbCdEfG&export=download",
			"https://drive.google.com/uc?export=view&id=1AbCdEfG",
		},
		{
			"already in view form",
			"https://drive.google.com/uc?export=view&id=1AbCdEfG",
			"https://drive.google.com/uc?export=view&id=1AbCdEfG",
		},
		{
			"non-drive url passes through",
			"https://res.cloudinary.com/demo/image/upload/sample.jpg",
			"https://res.cloudinary.com/demo/image/upload/sample.jpg",
		},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDriveLink(tt.in))
		})
	}
}

type fakeRepo struct {
	entries map[string]Entry
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{entries: make(map[string]Entry)}
}

func (r *fakeRepo) List(ctx context.Context) ([]Entry, error) {
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	return out, nil
}

func (r *fakeRepo) Insert(ctx context.Context, e *Entry) error {
	if e.ID == "" {
		e.ID = "g-1"
	}
	r.entries[e.ID] = *e
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id string) error {
	delete(r.entries, id)
	return nil
}

func TestGalleryAccess(t *testing.T) {
	svc := NewService(newFakeRepo())
	member := roster.Profile{ID: "m", Role: roster.RoleMember}
	outsider := roster.Profile{ID: "o", Role: roster.RoleNotAMember}
	boardAcct := roster.Profile{ID: "b", Role: roster.RoleBoard}

	_, err := svc.List(context.Background(), member)
	assert.NoError(t, err, "members can view the gallery")

	_, err = svc.List(context.Background(), outsider)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.Create(context.Background(), member, Entry{Title: "Picnic"})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.Create(context.Background(), boardAcct, Entry{Title: " "})
	assert.ErrorIs(t, err, ErrTitleRequired)
}

func TestGalleryCreateNormalizesImageURL(t *testing.T) {
	svc := NewService(newFakeRepo())
	boardAcct := roster.Profile{ID: "b", Role: roster.RoleBoard}

	entry, err := svc.Create(context.Background(), boardAcct, Entry{
		Title:    "Spring Picnic",
		ImageURL: "https://drive.google.com/file/d/xyz123/view?usp=sharing",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://drive.google.com/uc?export=view&id=xyz123", entry.ImageURL)
	assert.False(t, entry.Date.IsZero(), "missing date defaults to now")
}
