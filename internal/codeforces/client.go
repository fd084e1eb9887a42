package codeforces

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tle-mentors/student-progress-backend/internal/platform/config"
	"golang.org/x/time/rate"
)

// Client 封装对Codeforces公开API的访问
// 内置限速器以遵守数据源的调用频率要求；单次调用失败不在内部重试
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient 根据配置创建一个Codeforces客户端
func NewClient(cfg config.CodeforcesConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// FetchProfile 抓取一个handle的比赛rating历史与提交列表
// 两次独立的外部调用；任一失败则整体失败：
//   - handle不存在时返回 ErrHandleNotFound
//   - 其余失败（网络、超时、响应不完整）返回 ErrUnavailable
func (c *Client) FetchProfile(ctx context.Context, handle string) (*Profile, error) {
	var rawHistory []rawRatingEntry
	if err := c.call(ctx, "user.rating", handle, &rawHistory); err != nil {
		return nil, err
	}

	var rawSubmissions []rawSubmission
	if err := c.call(ctx, "user.status", handle, &rawSubmissions); err != nil {
		return nil, err
	}

	history := make([]ContestEntry, 0, len(rawHistory))
	for _, raw := range rawHistory {
		entry, err := canonicalContestEntry(raw)
		if err != nil {
			return nil, fmt.Errorf("handle %s 的比赛记录不完整: %v: %w", handle, err, ErrUnavailable)
		}
		history = append(history, entry)
	}

	submissions := make([]SubmissionEntry, 0, len(rawSubmissions))
	for _, raw := range rawSubmissions {
		entry, err := canonicalSubmissionEntry(raw)
		if err != nil {
			return nil, fmt.Errorf("handle %s 的提交记录不完整: %v: %w", handle, err, ErrUnavailable)
		}
		submissions = append(submissions, entry)
	}

	return &Profile{ContestHistory: history, Submissions: submissions}, nil
}

// call 执行一次API调用并把result字段解码到out中
func (c *Client) call(ctx context.Context, method, handle string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("等待限速器失败: %v: %w", err, ErrUnavailable)
	}

	endpoint := fmt.Sprintf("%s/%s?handle=%s", c.baseURL, method, url.QueryEscape(handle))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("无法构造请求 %s: %v: %w", method, err, ErrUnavailable)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("调用 %s 失败: %v: %w", method, err, ErrUnavailable)
	}
	defer resp.Body.Close()

	// Codeforces在业务失败时也会返回JSON envelope（HTTP 400），
	// 因此无论状态码如何都先尝试解析envelope
	var envelope struct {
		apiEnvelope
		Result json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("%s 响应不是有效的JSON (HTTP %d): %w", method, resp.StatusCode, ErrUnavailable)
	}

	if envelope.Status != "OK" {
		if isHandleNotFoundComment(envelope.Comment) {
			return fmt.Errorf("%s: %s: %w", method, envelope.Comment, ErrHandleNotFound)
		}
		return fmt.Errorf("%s 返回失败状态 (HTTP %d): %s: %w", method, resp.StatusCode, envelope.Comment, ErrUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s 返回非预期状态码 %d: %w", method, resp.StatusCode, ErrUnavailable)
	}

	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("无法解析 %s 的result字段: %v: %w", method, err, ErrUnavailable)
	}
	return nil
}

// isHandleNotFoundComment 识别数据源文档中"handle不存在"的错误说明
// 形如 "handles: User with handle xxx not found"
func isHandleNotFoundComment(comment string) bool {
	lower := strings.ToLower(comment)
	return strings.Contains(lower, "handle") && strings.Contains(lower, "not found")
}

// canonicalContestEntry 校验原始比赛记录并转换为规范结构
func canonicalContestEntry(raw rawRatingEntry) (ContestEntry, error) {
	if raw.ContestID == 0 {
		return ContestEntry{}, fmt.Errorf("缺少contestId")
	}
	if raw.RatingUpdateTimeSeconds == 0 {
		return ContestEntry{}, fmt.Errorf("缺少ratingUpdateTimeSeconds")
	}
	ratingChange := 0
	if raw.RatingChange != nil {
		ratingChange = *raw.RatingChange
	}
	return ContestEntry{
		ContestID:       raw.ContestID,
		ContestName:     raw.ContestName,
		Rank:            raw.Rank,
		RatingUpdatedAt: time.Unix(raw.RatingUpdateTimeSeconds, 0).UTC(),
		OldRating:       raw.OldRating,
		NewRating:       raw.NewRating,
		RatingChange:    ratingChange,
	}, nil
}

// canonicalSubmissionEntry 校验原始提交记录并转换为规范结构
func canonicalSubmissionEntry(raw rawSubmission) (SubmissionEntry, error) {
	if raw.ID == 0 {
		return SubmissionEntry{}, fmt.Errorf("缺少提交ID")
	}
	if raw.CreationTimeSeconds == 0 {
		return SubmissionEntry{}, fmt.Errorf("提交 %d 缺少creationTimeSeconds", raw.ID)
	}
	if raw.Problem.Index == "" {
		return SubmissionEntry{}, fmt.Errorf("提交 %d 缺少题目索引", raw.ID)
	}
	// 提交本身未携带contestId时，回退到题目上的contestId
	contestID := raw.ContestID
	if contestID == nil {
		contestID = raw.Problem.ContestID
	}
	return SubmissionEntry{
		ID:                  raw.ID,
		SubmittedAt:         time.Unix(raw.CreationTimeSeconds, 0).UTC(),
		ContestID:           contestID,
		ProblemIndex:        raw.Problem.Index,
		ProblemName:         raw.Problem.Name,
		ProblemRating:       raw.Problem.Rating,
		Verdict:             raw.Verdict,
		ProgrammingLanguage: raw.ProgrammingLanguage,
	}, nil
}
