package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"learning_system_backend/internal/config"
	"learning_system_backend/internal/model"
	"learning_system_backend/internal/service"
	"learning_system_backend/pkg/database"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t      *testing.T
	app    *App
	tokens map[model.UserRole]string
	users  map[model.UserRole]*model.User
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{
		Server:    config.ServerConfig{Mode: gin.TestMode, APIPrefix: "/api"},
		JWT:       config.JWTConfig{Secret: "test-secret-test-secret-test-secret", ExpireTime: time.Hour},
		Storage:   config.StorageConfig{Type: "local", LocalPath: t.TempDir()},
		Quiz:      config.QuizConfig{MaxQuestions: 10, DefaultQuestions: 5},
		Analytics: config.AnalyticsConfig{LockTTLSeconds: 5, LockWaitSeconds: 1},
	}
	a := newApp(cfg, db, nil)
	t.Cleanup(a.Close)

	s := &testServer{t: t, app: a, tokens: map[model.UserRole]string{}, users: map[model.UserRole]*model.User{}}
	for _, role := range []model.UserRole{model.Admin, model.Teacher, model.Student} {
		email := fmt.Sprintf("%s@school.test", role)
		hashed, err := service.HashPassword("secret1")
		if err != nil {
			t.Fatalf("hash: %v", err)
		}
		u := &model.User{Name: string(role), Email: email, Password: hashed, Role: role, Active: true}
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("create %s: %v", role, err)
		}
		s.users[role] = u
		s.tokens[role] = s.login(email, "secret1")
	}
	return s
}

func (s *testServer) do(method, path, token string, body any) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.app.Router.ServeHTTP(w, req)

	var env envelope
	json.Unmarshal(w.Body.Bytes(), &env)
	return w.Code, env
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	if code != http.StatusOK {
		s.t.Fatalf("login %s: status %d (%s)", email, code, env.Message)
	}
	var tok struct {
		AccessToken string `json:"accessToken"`
		TokenType   string `json:"tokenType"`
	}
	json.Unmarshal(env.Data, &tok)
	if tok.AccessToken == "" || tok.TokenType != "bearer" {
		s.t.Fatalf("unexpected token response %s", env.Data)
	}
	return tok.AccessToken
}

// otherStudentToken creates a second student and logs them in.
func (s *testServer) otherStudentToken() string {
	s.t.Helper()
	hashed, err := service.HashPassword("secret1")
	if err != nil {
		s.t.Fatalf("hash: %v", err)
	}
	u := &model.User{Name: "other", Email: "other@school.test", Password: hashed, Role: model.Student, Active: true}
	if err := s.app.DB.Create(u).Error; err != nil {
		s.t.Fatalf("create other student: %v", err)
	}
	return s.login(u.Email, "secret1")
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("decode %s: %v", env.Data, err)
	}
	return v
}

func TestAuth(t *testing.T) {
	s := newTestServer(t)

	if code, _ := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "student@school.test", "password": "nope"}); code != http.StatusUnauthorized {
		t.Errorf("bad password: status %d", code)
	}
	if code, _ := s.do(http.MethodGet, "/api/users/me", "", nil); code != http.StatusUnauthorized {
		t.Errorf("no token: status %d", code)
	}
	if code, _ := s.do(http.MethodGet, "/api/users/me", "garbage", nil); code != http.StatusUnauthorized {
		t.Errorf("bad token: status %d", code)
	}

	code, env := s.do(http.MethodGet, "/api/users/me", s.tokens[model.Teacher], nil)
	if code != http.StatusOK {
		t.Fatalf("me: status %d", code)
	}
	if me := decode[model.User](t, env); me.Email != "teacher@school.test" || me.Role != model.Teacher {
		t.Errorf("me = %+v", me)
	}
}

func TestRoleGates(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		role   model.UserRole
		body   any
		want   int
	}{
		{"student cannot generate", http.MethodPost, "/api/quizzes/generate", model.Student, map[string]any{"classId": "10A", "subject": "Math"}, http.StatusForbidden},
		{"teacher cannot create users", http.MethodPost, "/api/users", model.Teacher, map[string]any{"name": "x", "email": "x@school.test", "password": "secret1", "role": "student"}, http.StatusForbidden},
		{"teacher cannot submit attempts", http.MethodPost, "/api/quizzes/1/attempts", model.Teacher, map[string]any{"answers": map[string]string{}}, http.StatusForbidden},
		{"student cannot list change requests", http.MethodGet, "/api/change-requests", model.Student, nil, http.StatusForbidden},
		{"student cannot edit syllabus", http.MethodPost, "/api/syllabus", model.Student, map[string]any{"classId": "10A", "subject": "Math", "topic": "fractions"}, http.StatusForbidden},
		{"admin passes teacher gate", http.MethodPost, "/api/quizzes/generate", model.Admin, map[string]any{"classId": "10A", "subject": "Math", "numQuestions": 1}, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code, env := s.do(tt.method, tt.path, s.tokens[tt.role], tt.body); code != tt.want {
				t.Errorf("status %d, want %d (%s)", code, tt.want, env.Message)
			}
		})
	}
}

func TestGenerateQuiz_QuestionCount(t *testing.T) {
	s := newTestServer(t)
	teacher := s.tokens[model.Teacher]

	tests := []struct {
		name string
		n    any
		want int
		len  int
	}{
		{"default", nil, http.StatusCreated, 5},
		{"zero", 0, http.StatusCreated, 0},
		{"max", 10, http.StatusCreated, 10},
		{"negative", -1, http.StatusBadRequest, 0},
		{"over max", 11, http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := map[string]any{"classId": "10A", "subject": "Math", "topics": []string{"fractions"}}
			if tt.n != nil {
				body["numQuestions"] = tt.n
			}
			code, env := s.do(http.MethodPost, "/api/quizzes/generate", teacher, body)
			if code != tt.want {
				t.Fatalf("status %d, want %d (%s)", code, tt.want, env.Message)
			}
			if code == http.StatusCreated {
				if q := decode[model.Quiz](t, env); len(q.Questions) != tt.len {
					t.Errorf("%d questions, want %d", len(q.Questions), tt.len)
				}
			}
		})
	}
}

func TestQuizFlow(t *testing.T) {
	s := newTestServer(t)
	teacher, student := s.tokens[model.Teacher], s.tokens[model.Student]
	studentID := s.users[model.Student].ID

	code, env := s.do(http.MethodPost, "/api/quizzes/generate", teacher, map[string]any{
		"classId": "10A", "subject": "Math", "topics": []string{"fractions", "decimals"}, "numQuestions": 2,
	})
	if code != http.StatusCreated {
		t.Fatalf("generate: status %d (%s)", code, env.Message)
	}
	q := decode[model.Quiz](t, env)
	for _, question := range q.Questions {
		if question.Answer == "" {
			t.Fatal("teacher should see answers")
		}
	}

	code, env = s.do(http.MethodGet, fmt.Sprintf("/api/quizzes/%d", q.ID), student, nil)
	if code != http.StatusOK {
		t.Fatalf("get as student: status %d", code)
	}
	for _, question := range decode[model.Quiz](t, env).Questions {
		if question.Answer != "" {
			t.Fatal("student should not see answers")
		}
	}

	// first right, second wrong
	answers := map[string]string{}
	for i, question := range q.Questions {
		choice := question.Answer
		if i == 1 {
			for _, o := range question.Options {
				if o != question.Answer {
					choice = o
					break
				}
			}
		}
		answers[fmt.Sprint(question.ID)] = choice
	}
	code, env = s.do(http.MethodPost, fmt.Sprintf("/api/quizzes/%d/attempts", q.ID), student, map[string]any{"answers": answers})
	if code != http.StatusCreated {
		t.Fatalf("submit: status %d (%s)", code, env.Message)
	}
	result := decode[service.AttemptResult](t, env)
	if result.Attempt == nil || result.Attempt.Score == nil || *result.Attempt.Score != 0.5 {
		t.Fatalf("unexpected attempt %+v", result.Attempt)
	}
	if len(result.Responses) != 2 || !result.Responses[0].Correct || result.Responses[1].Correct {
		t.Errorf("unexpected responses %+v", result.Responses)
	}

	if code, _ := s.do(http.MethodPost, "/api/quizzes/999/attempts", student, map[string]any{"answers": answers}); code != http.StatusNotFound {
		t.Errorf("unknown quiz: status %d", code)
	}

	attemptPath := fmt.Sprintf("/api/quizzes/attempts/%d", result.Attempt.ID)
	if code, _ := s.do(http.MethodGet, attemptPath, student, nil); code != http.StatusOK {
		t.Errorf("own attempt: status %d", code)
	}
	if code, _ := s.do(http.MethodGet, attemptPath, teacher, nil); code != http.StatusOK {
		t.Errorf("teacher reading attempt: status %d", code)
	}
	if code, _ := s.do(http.MethodGet, attemptPath, s.otherStudentToken(), nil); code != http.StatusForbidden {
		t.Errorf("another student's attempt: status %d", code)
	}
	if code, _ := s.do(http.MethodGet, "/api/quizzes/attempts/999", teacher, nil); code != http.StatusNotFound {
		t.Errorf("unknown attempt: status %d", code)
	}

	code, env = s.do(http.MethodGet, "/api/quizzes/attempts/mine", student, nil)
	if attempts := decode[[]model.QuizAttempt](t, env); code != http.StatusOK || len(attempts) != 1 {
		t.Errorf("my attempts: status %d, %d attempts", code, len(attempts))
	}

	weakPath := fmt.Sprintf("/api/quizzes/analytics/weak-areas/%d", studentID)
	code, env = s.do(http.MethodGet, weakPath, student, nil)
	if code != http.StatusOK {
		t.Fatalf("weak areas: status %d (%s)", code, env.Message)
	}
	areas := decode[[]model.WeakArea](t, env)
	if len(areas) != 1 || areas[0].Topic != q.Questions[1].Topic || areas[0].Severity != 0.2 {
		t.Errorf("unexpected weak areas %+v", areas)
	}

	code, env = s.do(http.MethodGet, weakPath+"/stored", teacher, nil)
	if stored := decode[[]model.WeakArea](t, env); code != http.StatusOK || len(stored) != 1 {
		t.Errorf("stored weak areas: status %d, %d rows", code, len(stored))
	}

	other := fmt.Sprintf("/api/quizzes/analytics/weak-areas/%d", studentID+100)
	if code, _ := s.do(http.MethodGet, other, student, nil); code != http.StatusForbidden {
		t.Errorf("other student's weak areas: status %d", code)
	}

	code, env = s.do(http.MethodGet, fmt.Sprintf("/api/quizzes/%d/export", q.ID), teacher, nil)
	if export := decode[service.QuizExport](t, env); code != http.StatusOK || export.URL == "" {
		t.Errorf("export: status %d, %+v", code, export)
	}
}

func TestChangeRequestFlow(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(http.MethodPost, "/api/change-requests", s.tokens[model.Student], map[string]any{
		"requestedChanges": map[string]string{"name": "New Name"},
	})
	if code != http.StatusCreated {
		t.Fatalf("submit: status %d (%s)", code, env.Message)
	}
	cr := decode[model.ChangeRequest](t, env)

	code, env = s.do(http.MethodPost, fmt.Sprintf("/api/change-requests/%d/review", cr.ID), s.tokens[model.Admin], map[string]string{"status": "denied"})
	if code != http.StatusOK {
		t.Fatalf("review: status %d (%s)", code, env.Message)
	}
	if reviewed := decode[model.ChangeRequest](t, env); reviewed.Status != "denied" {
		t.Errorf("status = %q", reviewed.Status)
	}

	if code, _ := s.do(http.MethodPost, fmt.Sprintf("/api/change-requests/%d/review", cr.ID), s.tokens[model.Admin], map[string]string{"status": "maybe"}); code != http.StatusBadRequest {
		t.Errorf("invalid review status: %d", code)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/health", "/api/health"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		s.app.Router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("%s: status %d", path, w.Code)
		}
	}
}
