package student

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// --- API请求模型 ---

type createRequest struct {
	Name             string `json:"name" binding:"required"`
	Email            string `json:"email" binding:"required,email"`
	PhoneNumber      string `json:"phoneNumber"`
	Handle           string `json:"codeforcesHandle" binding:"required"`
	AutoEmailEnabled *bool  `json:"autoEmailEnabled"`
}

type updateRequest struct {
	Name             *string `json:"name"`
	Email            *string `json:"email"`
	PhoneNumber      *string `json:"phoneNumber"`
	Handle           *string `json:"codeforcesHandle"`
	AutoEmailEnabled *bool   `json:"autoEmailEnabled"`
}

// parseStudentID 从路径参数中解析学员ID
func parseStudentID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的学员ID格式"})
		return 0, false
	}
	return uint(id), true
}

// statusForError 将模块错误映射为HTTP状态码
func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateEmail), errors.Is(err, ErrDuplicateHandle):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// --- 控制器函数 ---

// GetStudents 获取全部学员及仪表盘统计
func GetStudents(c *gin.Context) {
	overviews, err := GetOverview()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取学员列表失败"})
		return
	}
	c.JSON(http.StatusOK, overviews)
}

// GetStudent 按ID获取单个学员
func GetStudent(c *gin.Context) {
	id, ok := parseStudentID(c)
	if !ok {
		return
	}
	s, err := GetStudentByID(id)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s)
}

// GetStudentProfile 获取学员档案（比赛历史与提交记录）
func GetStudentProfile(c *gin.Context) {
	id, ok := parseStudentID(c)
	if !ok {
		return
	}
	profile, err := GetProfile(id)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// AddStudent 创建新学员
// 响应立即返回，Codeforces数据同步在后台进行
func AddStudent(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "姓名、邮箱和Codeforces handle为必填项"})
		return
	}

	s, err := CreateStudent(CreateInput{
		Name:             req.Name,
		Email:            req.Email,
		PhoneNumber:      req.PhoneNumber,
		Handle:           req.Handle,
		AutoEmailEnabled: req.AutoEmailEnabled,
	})
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, s)
}

// UpdateStudentByID 编辑学员
// handle变更时会在后台触发重新同步，响应不等待同步结果
func UpdateStudentByID(c *gin.Context) {
	id, ok := parseStudentID(c)
	if !ok {
		return
	}

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求体格式不正确"})
		return
	}

	s, err := UpdateStudent(id, UpdateInput{
		Name:             req.Name,
		Email:            req.Email,
		PhoneNumber:      req.PhoneNumber,
		Handle:           req.Handle,
		AutoEmailEnabled: req.AutoEmailEnabled,
	})
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s)
}

// DeleteStudent 删除学员及其全部派生数据
func DeleteStudent(c *gin.Context) {
	id, ok := parseStudentID(c)
	if !ok {
		return
	}
	if err := RemoveStudent(id); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "学员及其关联数据已删除"})
}

// DownloadStudentsCsv 导出全部学员为CSV文件
func DownloadStudentsCsv(c *gin.Context) {
	csvString, err := BuildStudentsCSV()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "生成CSV失败"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="students_data.csv"`)
	c.Data(http.StatusOK, "text/csv", []byte(csvString))
}
