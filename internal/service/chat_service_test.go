package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"learning_system_backend/internal/config"
	"learning_system_backend/internal/model"
	"learning_system_backend/internal/repository"
	"learning_system_backend/internal/service"
	"learning_system_backend/internal/util"
)

func newChatService(t *testing.T, ai config.AIConfig) (*service.ChatService, *repository.SyllabusRepository) {
	t.Helper()
	db := newTestDB(t)
	syllabusRepo := repository.NewSyllabusRepository(db)
	return service.NewChatService(repository.NewChatRepository(db), syllabusRepo, nil, service.NewAIService(ai)), syllabusRepo
}

func TestChat_ThreadsAndMessages(t *testing.T) {
	chat, _ := newChatService(t, config.AIConfig{})

	if _, err := chat.CreateThread(1, service.CreateThreadReq{Scope: "gossip"}); !errors.Is(err, util.ErrInvalidScope) {
		t.Errorf("invalid scope: err = %v", err)
	}

	thread, err := chat.CreateThread(1, service.CreateThreadReq{Scope: model.ScopeClass, Subject: "Math"})
	if err != nil {
		t.Fatalf("CreateThread: %v", err)
	}
	if string(thread.Audience) != "{}" {
		t.Errorf("audience = %s, want {}", thread.Audience)
	}

	for _, body := range []string{"hello", "any questions?"} {
		if _, err := chat.PostMessage(thread.ID, 1, model.Teacher, body); err != nil {
			t.Fatalf("PostMessage: %v", err)
		}
	}
	if _, err := chat.PostMessage(999, 1, model.Teacher, "lost"); !errors.Is(err, util.ErrThreadNotFound) {
		t.Errorf("missing thread: err = %v", err)
	}

	msgs, err := chat.ListMessages(thread.ID, 0, 0)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Body != "hello" || msgs[1].Role != model.Teacher {
		t.Fatalf("unexpected messages %+v", msgs)
	}

	after, err := chat.ListMessages(thread.ID, msgs[0].ID, 10)
	if err != nil || len(after) != 1 || after[0].ID != msgs[1].ID {
		t.Errorf("paging after first message = %+v, %v", after, err)
	}

	threads, err := chat.ListThreads(model.ScopeClass)
	if err != nil || len(threads) != 1 {
		t.Errorf("ListThreads = %d, %v", len(threads), err)
	}
}

func TestAskAI_StubUsesSyllabus(t *testing.T) {
	chat, syllabusRepo := newChatService(t, config.AIConfig{})
	if err := syllabusRepo.Create(&model.SyllabusItem{ClassID: "10A", Subject: "Math", Topic: "fractions"}); err != nil {
		t.Fatalf("seed syllabus: %v", err)
	}

	resp, err := chat.AskAI(context.Background(), service.AIChatReq{Message: "What is a half?", ClassID: "10A"})
	if err != nil {
		t.Fatalf("AskAI: %v", err)
	}
	if resp.Provider != service.ProviderStub {
		t.Errorf("provider = %q", resp.Provider)
	}
	want := "[AI stub] Context: fractions. Answering briefly: What is a half?"
	if resp.Reply != want {
		t.Errorf("reply = %q, want %q", resp.Reply, want)
	}
}

func TestStubReply_TruncatesLongMessages(t *testing.T) {
	got := service.StubReply(strings.Repeat("x", 500), nil)
	if want := "[AI stub] Answering briefly: " + strings.Repeat("x", 300); got != want {
		t.Errorf("reply has %d chars, want %d", len(got), len(want))
	}
}

func TestAIService_OpenAICompatible(t *testing.T) {
	var gotAuth string
	var gotReq service.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  One half is 0.5.  "}}]}`))
	}))
	defer srv.Close()

	ai := service.NewAIService(config.AIConfig{BaseURL: srv.URL, APIKey: "k", Model: "m", TimeoutSeconds: 5})
	reply, provider, err := ai.Ask(context.Background(), "What is a half?", []string{"fractions"})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if reply != "One half is 0.5." || provider != service.ProviderOpenAI {
		t.Errorf("got %q from %q", reply, provider)
	}
	if gotAuth != "Bearer k" || gotReq.Model != "m" || len(gotReq.Messages) != 2 {
		t.Errorf("unexpected request: auth=%q body=%+v", gotAuth, gotReq)
	}

	// dropping the key at runtime falls back to the stub
	ai.Update(config.AIConfig{})
	if _, provider, _ := ai.Ask(context.Background(), "hi", nil); provider != service.ProviderStub {
		t.Errorf("provider after update = %q", provider)
	}
}

func TestAIService_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ai := service.NewAIService(config.AIConfig{BaseURL: srv.URL, APIKey: "k"})
	if _, _, err := ai.Ask(context.Background(), "hi", nil); err == nil || !strings.Contains(err.Error(), "429") {
		t.Errorf("err = %v, want status 429", err)
	}
}
