package service_test

import (
	"testing"
	"time"

	"learning_system_backend/internal/config"
	"learning_system_backend/internal/model"
	"learning_system_backend/internal/repository"
	"learning_system_backend/internal/service"
	"learning_system_backend/pkg/database"
	"learning_system_backend/pkg/locker"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type fixture struct {
	db       *gorm.DB
	quiz     *service.QuizService
	weakArea *service.WeakAreaService
	locker   *locker.Local
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	quizRepo := repository.NewQuizRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	lk := locker.NewLocal()

	return &fixture{
		db:       db,
		quiz:     service.NewQuizService(quizRepo, attemptRepo),
		weakArea: service.NewWeakAreaService(quizRepo, attemptRepo, repository.NewWeakAreaRepository(db), lk, time.Second),
		locker:   lk,
	}
}

func testConfig() *config.Config {
	return &config.Config{
		JWT:   config.JWTConfig{Secret: "test-secret-test-secret-test-secret", ExpireTime: time.Hour},
		Admin: config.AdminConfig{Email: "admin@example.com", Password: "admin123"},
	}
}

func createUser(t *testing.T, db *gorm.DB, email string, role model.UserRole) *model.User {
	t.Helper()
	hashed, err := service.HashPassword("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &model.User{Name: email, Email: email, Password: hashed, Role: role, Active: true}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// wrongOption returns any option of q other than its answer.
func wrongOption(q model.QuizQuestion) string {
	for _, o := range q.Options {
		if o != q.Answer {
			return o
		}
	}
	return ""
}
