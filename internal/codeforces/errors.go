package codeforces

import "errors"

var (
	// ErrHandleNotFound 表示Codeforces明确报告该handle不存在
	// 这是针对该handle的永久性失败，重试无意义
	ErrHandleNotFound = errors.New("codeforces handle不存在")

	// ErrUnavailable 表示数据源暂时不可用：网络错误、超时、
	// 非预期状态码或响应格式不完整。调用方应等待下一个同步周期自然重试
	ErrUnavailable = errors.New("codeforces数据源暂时不可用")
)
