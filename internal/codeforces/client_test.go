package codeforces

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tle-mentors/student-progress-backend/internal/platform/config"
)

// newTestClient 指向一个假的Codeforces API服务器
func newTestClient(baseURL string) *Client {
	return NewClient(config.CodeforcesConfig{
		BaseURL:           baseURL,
		TimeoutSeconds:    5,
		RequestsPerSecond: 1000,
	})
}

func TestFetchProfileSuccess(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user.rating", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tourist", r.URL.Query().Get("handle"))
		w.Write([]byte(`{
			"status": "OK",
			"result": [
				{"contestId": 1700, "contestName": "Round A", "rank": 42,
				 "ratingUpdateTimeSeconds": 1700000000, "oldRating": 1000, "newRating": 1200},
				{"contestId": 1701, "contestName": "Round B", "rank": 99,
				 "ratingUpdateTimeSeconds": 1700100000, "oldRating": 1200, "ratingChange": -50}
			]
		}`))
	})
	mux.HandleFunc("/user.status", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"status": "OK",
			"result": [
				{"id": 1, "contestId": 1700, "creationTimeSeconds": 1700000500,
				 "problem": {"contestId": 1700, "index": "A", "name": "Sum", "rating": 800},
				 "verdict": "OK", "programmingLanguage": "GNU C++17"},
				{"id": 2, "creationTimeSeconds": 1700000600,
				 "problem": {"index": "B", "name": "Practice"},
				 "verdict": "WRONG_ANSWER", "programmingLanguage": "Python 3"}
			]
		}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	profile, err := newTestClient(srv.URL).FetchProfile(context.Background(), "tourist")
	require.NoError(t, err)

	require.Len(t, profile.ContestHistory, 2)
	first := profile.ContestHistory[0]
	assert.Equal(t, 1700, first.ContestID)
	assert.Equal(t, "Round A", first.ContestName)
	assert.Equal(t, 42, first.Rank)
	assert.Equal(t, 1000, first.OldRating)
	require.NotNil(t, first.NewRating)
	assert.Equal(t, 1200, *first.NewRating)

	// 数据源缺失newRating时保留nil，由上层按ratingChange推算
	second := profile.ContestHistory[1]
	assert.Nil(t, second.NewRating)
	assert.Equal(t, -50, second.RatingChange)

	require.Len(t, profile.Submissions, 2)
	assert.Equal(t, int64(1), profile.Submissions[0].ID)
	assert.Equal(t, "A", profile.Submissions[0].ProblemIndex)
	require.NotNil(t, profile.Submissions[0].ContestID)
	assert.Equal(t, 1700, *profile.Submissions[0].ContestID)

	// 练习题库的提交没有contestId
	assert.Nil(t, profile.Submissions[1].ContestID)
	assert.Equal(t, "WRONG_ANSWER", profile.Submissions[1].Verdict)
}

func TestFetchProfileHandleNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Codeforces在handle不存在时返回HTTP 400加说明文字
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status": "FAILED", "comment": "handles: User with handle ghost not found"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchProfile(context.Background(), "ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHandleNotFound)
}

func TestFetchProfileTransientFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`Call limit exceeded`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchProfile(context.Background(), "tourist")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestFetchProfileOtherAPIFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status": "FAILED", "comment": "Call limit exceeded"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchProfile(context.Background(), "tourist")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NotErrorIs(t, err, ErrHandleNotFound)
}
