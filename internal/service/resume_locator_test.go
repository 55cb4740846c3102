package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"talentmatch/internal/domain"
	"talentmatch/internal/service"
	"talentmatch/mocks"
)

func TestObjectPath(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"public url", "https://x.supabase.co/storage/v1/object/public/resumes/resumes/user_1/cv.pdf?t=1", "resumes/user_1/cv.pdf"},
		{"public url other bucket", "https://x.supabase.co/storage/v1/object/public/other/a/cv.pdf", "other/a/cv.pdf"},
		{"plain url", "https://cdn.example.com/resumes/a/cv%20final.pdf", "a/cv final.pdf"},
		{"bucket prefixed", "resumes/user_1/cv.pdf", "user_1/cv.pdf"},
		{"bare path", "user_1/cv.pdf", "user_1/cv.pdf"},
		{"whitespace", "  user_1/cv.pdf ", "user_1/cv.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.ObjectPath(tt.ref, "resumes"))
		})
	}
}

func TestCandidateKeys_OrderAndDedup(t *testing.T) {
	keys := service.CandidateKeys("user_42/resumes/cv.pdf", "42")
	assert.Equal(t, []string{
		"user_42/resumes/cv.pdf",
		"resumes/user_42/cv.pdf",
		"user_42/resumes/user_42/cv.pdf",
		"resumes/cv.pdf",
		"cv.pdf",
	}, keys)
}

func TestCandidateKeys_LeadingSlashAndPrefixedID(t *testing.T) {
	keys := service.CandidateKeys("/uploads/cv.pdf", "user_7")
	assert.Equal(t, []string{
		"/uploads/cv.pdf",
		"uploads/cv.pdf",
		"user_7/resumes/cv.pdf",
		"resumes/user_7/cv.pdf",
		"user_7/resumes/user_7/cv.pdf",
		"resumes/cv.pdf",
		"cv.pdf",
	}, keys)
}

func TestCandidateKeys_NoCandidate(t *testing.T) {
	assert.Equal(t, []string{"a/b/cv.pdf", "resumes/cv.pdf", "cv.pdf"}, service.CandidateKeys("a/b/cv.pdf", ""))
	assert.Empty(t, service.CandidateKeys("", ""))
}

func TestResumeLocator_FirstHitWins(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	storage.On("Download", mock.Anything, "resumes", "user_1/resumes/cv.pdf").Return(nil, domain.ErrNotFound).Once()
	storage.On("Download", mock.Anything, "resumes", "resumes/user_1/cv.pdf").Return([]byte("%PDF-1.4"), nil).Once()

	loc := service.NewResumeLocator(storage, "resumes")
	data, trace, err := loc.Fetch(context.Background(), "user_1/resumes/cv.pdf", "1")

	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), data)
	assert.Equal(t, "resumes/user_1/cv.pdf", trace.Key)
	require.Len(t, trace.Attempts, 2)
	assert.False(t, trace.Attempts[0].Found)
	assert.Equal(t, domain.ErrNotFound.Error(), trace.Attempts[0].Error)
	assert.True(t, trace.Attempts[1].Found)
	storage.AssertExpectations(t)
}

func TestResumeLocator_NotFound(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	storage.On("Download", mock.Anything, "resumes", mock.Anything).Return(nil, domain.ErrNotFound)

	loc := service.NewResumeLocator(storage, "resumes")
	_, trace, err := loc.Fetch(context.Background(), "a/cv.pdf", "")

	assert.ErrorIs(t, err, domain.ErrResumeNotFound)
	assert.Len(t, trace.Attempts, 3)
	assert.Empty(t, trace.Key)
}

func TestResumeLocator_CancelledContext(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := service.NewResumeLocator(storage, "resumes").Fetch(ctx, "a/cv.pdf", "")
	assert.ErrorIs(t, err, context.Canceled)
	storage.AssertNotCalled(t, "Download", mock.Anything, mock.Anything, mock.Anything)
}
