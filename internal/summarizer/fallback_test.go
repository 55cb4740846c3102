package summarizer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"talentmatch/internal/port"
	"talentmatch/internal/summarizer"
	"talentmatch/mocks"
)

var summaryInput = port.SummaryInput{Text: "Go developer with 5 years experience", Role: "Backend Engineer"}

func TestFallbackSummarizer_FirstSucceeds(t *testing.T) {
	s1 := new(mocks.MockSummarizer)
	s2 := new(mocks.MockSummarizer)
	s1.On("Summarize", mock.Anything, summaryInput).Return(&port.SummaryOutput{Analysis: "ok", ModelUsed: "gpt-4o-mini"}, nil)

	fs := summarizer.NewFallbackSummarizer([]port.Summarizer{s1, s2}, []string{"openai", "claude"})

	out, err := fs.Summarize(context.Background(), summaryInput)

	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", out.ModelUsed)
	s2.AssertNotCalled(t, "Summarize", mock.Anything, mock.Anything)
}

func TestFallbackSummarizer_FirstFails_SecondSucceeds(t *testing.T) {
	s1 := new(mocks.MockSummarizer)
	s2 := new(mocks.MockSummarizer)
	s1.On("Summarize", mock.Anything, summaryInput).Return(nil, errors.New("boom"))
	s2.On("Summarize", mock.Anything, summaryInput).Return(&port.SummaryOutput{Analysis: "ok", ModelUsed: "claude"}, nil)

	fs := summarizer.NewFallbackSummarizer([]port.Summarizer{s1, s2}, []string{"openai", "claude"})

	out, err := fs.Summarize(context.Background(), summaryInput)

	require.NoError(t, err)
	assert.Equal(t, "claude", out.ModelUsed)
}

func TestFallbackSummarizer_RateLimitedProviderIsSkippedNextTime(t *testing.T) {
	s1 := new(mocks.MockSummarizer)
	s2 := new(mocks.MockSummarizer)
	s1.On("Summarize", mock.Anything, summaryInput).Return(nil, summarizer.NewRateLimitError("openai", errors.New("429"), 60)).Once()
	s2.On("Summarize", mock.Anything, summaryInput).Return(&port.SummaryOutput{Analysis: "ok", ModelUsed: "claude"}, nil)

	fs := summarizer.NewFallbackSummarizer([]port.Summarizer{s1, s2}, []string{"openai", "claude"})

	_, err := fs.Summarize(context.Background(), summaryInput)
	require.NoError(t, err)
	_, err = fs.Summarize(context.Background(), summaryInput)
	require.NoError(t, err)

	s1.AssertNumberOfCalls(t, "Summarize", 1)
	s2.AssertNumberOfCalls(t, "Summarize", 2)
}

func TestFallbackSummarizer_AllRateLimited(t *testing.T) {
	s1 := new(mocks.MockSummarizer)
	s2 := new(mocks.MockSummarizer)
	s1.On("Summarize", mock.Anything, summaryInput).Return(nil, summarizer.NewRateLimitError("openai", errors.New("429"), 30))
	s2.On("Summarize", mock.Anything, summaryInput).Return(nil, summarizer.NewRateLimitError("claude", errors.New("429"), 90))

	fs := summarizer.NewFallbackSummarizer([]port.Summarizer{s1, s2}, []string{"openai", "claude"})

	_, err := fs.Summarize(context.Background(), summaryInput)

	var rlErr *summarizer.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "all", rlErr.Provider)
	assert.InDelta(t, 30, rlErr.RetryAfter.Seconds(), 1)
}

func TestFallbackSummarizer_AllFail(t *testing.T) {
	s1 := new(mocks.MockSummarizer)
	s2 := new(mocks.MockSummarizer)
	s1.On("Summarize", mock.Anything, summaryInput).Return(nil, summarizer.NewRateLimitError("openai", errors.New("429"), 30))
	s2.On("Summarize", mock.Anything, summaryInput).Return(nil, errors.New("bad gateway"))

	fs := summarizer.NewFallbackSummarizer([]port.Summarizer{s1, s2}, []string{"openai", "claude"})

	_, err := fs.Summarize(context.Background(), summaryInput)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "all summarizers failed")
	assert.Contains(t, err.Error(), "bad gateway")
}
