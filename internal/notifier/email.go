package notifier

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/tle-mentors/student-progress-backend/internal/platform/config"
)

// EmailNotifier 通过SMTP发送不活跃提醒邮件
// 未启用邮件功能时只打印日志，方便本地开发环境跑完整同步流程
type EmailNotifier struct {
	cfg config.EmailConfig
}

// NewEmailNotifier 根据配置创建邮件通知器
func NewEmailNotifier(cfg config.EmailConfig) *EmailNotifier {
	return &EmailNotifier{cfg: cfg}
}

// SendReminder 给一名不活跃的学员发送提醒邮件
// reminderCount 是包含本次在内的累计提醒次数，会体现在邮件正文中
func (n *EmailNotifier) SendReminder(ctx context.Context, email, name string, reminderCount int) error {
	if !n.cfg.Enabled {
		fmt.Printf("邮件功能未启用，跳过发送: 收件人 %s (第%d次提醒)。\n", email, reminderCount)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	subject := "提醒：最近7天没有解题记录"
	body := buildReminderBody(name, reminderCount)
	msg := buildMessage(n.cfg.From, email, subject, body)

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	if err := smtp.SendMail(addr, auth, n.cfg.From, []string{email}, msg); err != nil {
		return fmt.Errorf("发送提醒邮件到 %s 失败: %w", email, err)
	}
	fmt.Printf("已发送第%d次提醒邮件给 %s。\n", reminderCount, email)
	return nil
}

// buildReminderBody 生成提醒邮件的HTML正文
func buildReminderBody(name string, reminderCount int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<p>%s 同学，你好：</p>", name))
	b.WriteString("<p>我们注意到你在最近7天内没有任何评测通过的提交。坚持每天做题是进步最快的方式，回来继续加油吧！</p>")
	b.WriteString(fmt.Sprintf("<p>这是我们发给你的第 %d 次提醒。</p>", reminderCount))
	b.WriteString("<p>—— 教练团队</p>")
	return b.String()
}

// buildMessage 按RFC 5322组装一封HTML邮件
func buildMessage(from, to, subject, htmlBody string) []byte {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("From: %s\r\n", from))
	b.WriteString(fmt.Sprintf("To: %s\r\n", to))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}
