package account

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tle-mentors/student-progress-backend/pkg/token"
)

func TestMain(m *testing.M) {
	token.InitSecretKey()
	os.Exit(m.Run())
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Account{}))
	return db
}

func TestSignupAndLogin(t *testing.T) {
	db := newTestDB(t)

	acc, signupToken, err := Signup(db, "Coach@Example.com", "教练", "super-secret-1")
	require.NoError(t, err)
	assert.NotEmpty(t, signupToken)
	// 邮箱统一小写存储
	assert.Equal(t, "coach@example.com", acc.Email)
	assert.NotEqual(t, "super-secret-1", acc.PasswordHash)

	loggedIn, loginToken, err := Login(db, "coach@example.com", "super-secret-1")
	require.NoError(t, err)
	assert.NotEmpty(t, loginToken)
	assert.Equal(t, acc.ID, loggedIn.ID)

	claims, err := token.ParseToken(loginToken)
	require.NoError(t, err)
	assert.Equal(t, acc.ID, claims.AccountID)
	assert.Equal(t, "coach@example.com", claims.Email)
}

func TestSignupDuplicateEmail(t *testing.T) {
	db := newTestDB(t)

	_, _, err := Signup(db, "coach@example.com", "教练", "super-secret-1")
	require.NoError(t, err)

	_, _, err = Signup(db, "COACH@example.com", "另一个教练", "super-secret-2")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db := newTestDB(t)

	_, _, err := Signup(db, "coach@example.com", "教练", "super-secret-1")
	require.NoError(t, err)

	_, _, err = Login(db, "coach@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// 不存在的账号与密码错误返回同一个错误
	_, _, err = Login(db, "ghost@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
