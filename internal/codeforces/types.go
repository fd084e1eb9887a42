package codeforces

import "time"

// Profile 是一次完整抓取的结果：比赛rating历史与提交列表
type Profile struct {
	ContestHistory []ContestEntry
	Submissions    []SubmissionEntry
}

// ContestEntry 是一条规范化后的Rated比赛记录
// 字段已通过校验，时间戳已转换为time.Time
type ContestEntry struct {
	ContestID   int
	ContestName string
	Rank        int
	// RatingUpdatedAt 是本场比赛rating更新的时间
	RatingUpdatedAt time.Time
	OldRating       int
	// NewRating 是数据源给出的赛后rating；数据源缺失该字段时为nil，
	// 此时赛后rating按 OldRating+RatingChange 推算
	NewRating    *int
	RatingChange int
}

// SubmissionEntry 是一条规范化后的提交记录
type SubmissionEntry struct {
	ID          int64
	SubmittedAt time.Time
	// ContestID 是提交所属的比赛；练习题库的提交为nil
	ContestID *int
	// ProblemIndex 是题目在比赛中的编号，如 "A"、"B1"
	ProblemIndex string
	ProblemName  string
	// ProblemRating 是题目难度分；未定难度时为nil
	ProblemRating       *int
	Verdict             string
	ProgrammingLanguage string
}

// --- 数据源原始响应结构 ---
// 与Codeforces API的JSON字段一一对应，仅在本包内使用

type apiEnvelope struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

type rawRatingEntry struct {
	ContestID               int    `json:"contestId"`
	ContestName             string `json:"contestName"`
	Rank                    int    `json:"rank"`
	RatingUpdateTimeSeconds int64  `json:"ratingUpdateTimeSeconds"`
	OldRating               int    `json:"oldRating"`
	NewRating               *int   `json:"newRating"`
	RatingChange            *int   `json:"ratingChange"`
}

type rawProblem struct {
	ContestID *int   `json:"contestId"`
	Index     string `json:"index"`
	Name      string `json:"name"`
	Rating    *int   `json:"rating"`
}

type rawSubmission struct {
	ID                  int64      `json:"id"`
	ContestID           *int       `json:"contestId"`
	CreationTimeSeconds int64      `json:"creationTimeSeconds"`
	Problem             rawProblem `json:"problem"`
	Verdict             string     `json:"verdict"`
	ProgrammingLanguage string     `json:"programmingLanguage"`
}
