package student

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/tle-mentors/student-progress-backend/internal/platform/database"
)

const csvTimeLayout = "2006-01-02 15:04:05"

// BuildStudentsCSV 将全部学员导出为CSV字符串
func BuildStudentsCSV() (string, error) {
	students, err := ListAll(database.DB)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)

	header := []string{
		"Name", "Email", "Phone Number", "Codeforces Handle",
		"Current Rating", "Max Rating", "Last CF Data Update",
		"Reminder Emails Sent", "Auto Email Enabled", "Created At",
	}
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("无法写入CSV表头: %w", err)
	}

	for _, s := range students {
		lastSynced := "N/A"
		if s.LastSyncedAt != nil {
			lastSynced = s.LastSyncedAt.Format(csvTimeLayout)
		}
		row := []string{
			s.Name,
			s.Email,
			s.PhoneNumber,
			s.Handle,
			strconv.Itoa(s.CurrentRating),
			strconv.Itoa(s.MaxRating),
			lastSynced,
			strconv.Itoa(s.ReminderEmailCount),
			strconv.FormatBool(s.AutoEmailEnabled),
			s.CreatedAt.Format(csvTimeLayout),
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("无法写入CSV行: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("CSV输出失败: %w", err)
	}
	return sb.String(), nil
}
