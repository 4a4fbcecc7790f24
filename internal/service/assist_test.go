package service

import (
	"context"
	"testing"

	"github.com/Rrens/sql-tutor/internal/domain"
	"github.com/Rrens/sql-tutor/internal/llm"
	"github.com/Rrens/sql-tutor/internal/security"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestService(provider *MockProvider, attemptRepo *MockAttemptRepo) *AssistService {
	router := llm.NewRouter(provider.Name())
	router.RegisterProvider(provider)
	return NewAssistService(router, security.NewSQLValidator(), attemptRepo)
}

func TestAssistService_Generate_Success(t *testing.T) {
	provider := NewMockProvider("mock")
	attemptRepo := new(MockAttemptRepo)
	svc := newTestService(provider, attemptRepo)

	ctx := context.Background()
	userID := uuid.New()

	provider.On("Complete", ctx, mock.AnythingOfType("llm.Request"), "mock-model").Return(&llm.Response{
		RawText:    "CODE:SUCCESS\nSQL_STATEMENT:\nSELECT name FROM students;\nEXPLANATION: lists every student name",
		Model:      "mock-model",
		TokensUsed: 42,
	}, nil)
	attemptRepo.On("Create", ctx, mock.AnythingOfType("*domain.Attempt")).Return(nil)

	resp, err := svc.Assist(ctx, userID, domain.ModeGenerate, domain.AssistRequest{
		Question:  "list all student names",
		SchemaDDL: "CREATE TABLE students (id INT, name VARCHAR);",
	})

	assert.NoError(t, err)
	assert.Equal(t, "SUCCESS", resp.Code)
	assert.Equal(t, "SELECT name FROM students;", resp.SQL)
	assert.Equal(t, "lists every student name", resp.Explanation)
	assert.NotNil(t, resp.Validation)
	assert.True(t, resp.Validation.OK)
	assert.Equal(t, 42, resp.Metadata.TokensUsed)

	provider.AssertExpectations(t)
	attemptRepo.AssertExpectations(t)
}

func TestAssistService_Generate_GateRejectsSQL(t *testing.T) {
	provider := NewMockProvider("mock")
	attemptRepo := new(MockAttemptRepo)
	svc := newTestService(provider, attemptRepo)

	ctx := context.Background()

	provider.On("Complete", ctx, mock.AnythingOfType("llm.Request"), "mock-model").Return(&llm.Response{
		RawText: "CODE:SUCCESS\nSQL_STATEMENT:\nGRANT ALL ON students TO mallory;",
	}, nil)
	attemptRepo.On("Create", ctx, mock.AnythingOfType("*domain.Attempt")).Return(nil)

	resp, err := svc.Assist(ctx, uuid.New(), domain.ModeGenerate, domain.AssistRequest{
		Question:  "give mallory access",
		SchemaDDL: "CREATE TABLE students (id INT);",
	})

	assert.NoError(t, err)
	assert.Equal(t, "SUCCESS", resp.Code)
	// Rejected SQL never leaves the server.
	assert.Empty(t, resp.SQL)
	assert.NotNil(t, resp.Validation)
	assert.False(t, resp.Validation.OK)
	assert.Contains(t, resp.Validation.Reason, "grant")

	attemptRepo.AssertExpectations(t)
}

func TestAssistService_Generate_TableAllowList(t *testing.T) {
	provider := NewMockProvider("mock")
	attemptRepo := new(MockAttemptRepo)
	svc := newTestService(provider, attemptRepo)

	ctx := context.Background()

	provider.On("Complete", ctx, mock.AnythingOfType("llm.Request"), "mock-model").Return(&llm.Response{
		RawText: "CODE:SUCCESS\nSQL_STATEMENT:\nSELECT * FROM secrets;",
	}, nil)
	attemptRepo.On("Create", ctx, mock.AnythingOfType("*domain.Attempt")).Return(nil)

	resp, err := svc.Assist(ctx, uuid.New(), domain.ModeGenerate, domain.AssistRequest{
		Question:      "show me the secrets",
		SchemaDDL:     "CREATE TABLE students (id INT);",
		AllowedTables: []string{"students"},
	})

	assert.NoError(t, err)
	assert.Empty(t, resp.SQL)
	assert.False(t, resp.Validation.OK)
	assert.Contains(t, resp.Validation.Reason, "secrets")
}

func TestAssistService_NonSuccessSkipsGate(t *testing.T) {
	provider := NewMockProvider("mock")
	attemptRepo := new(MockAttemptRepo)
	svc := newTestService(provider, attemptRepo)

	ctx := context.Background()

	provider.On("Complete", ctx, mock.AnythingOfType("llm.Request"), "mock-model").Return(&llm.Response{
		RawText: "CODE: SCHEMA_MISMATCH\nEXPLANATION: there is no orders table in this schema",
	}, nil)
	attemptRepo.On("Create", ctx, mock.AnythingOfType("*domain.Attempt")).Return(nil)

	resp, err := svc.Assist(ctx, uuid.New(), domain.ModeGenerate, domain.AssistRequest{
		Question:  "total per order",
		SchemaDDL: "CREATE TABLE students (id INT);",
	})

	assert.NoError(t, err)
	assert.Equal(t, "SCHEMA_MISMATCH", resp.Code)
	assert.Empty(t, resp.SQL)
	assert.Nil(t, resp.Validation)
}

func TestAssistService_ModeInputChecks(t *testing.T) {
	provider := NewMockProvider("mock")
	attemptRepo := new(MockAttemptRepo)
	svc := newTestService(provider, attemptRepo)

	ctx := context.Background()

	_, err := svc.Assist(ctx, uuid.New(), domain.ModeGenerate, domain.AssistRequest{
		SchemaDDL: "CREATE TABLE students (id INT);",
	})
	assert.Error(t, err)

	_, err = svc.Assist(ctx, uuid.New(), domain.ModeFix, domain.AssistRequest{
		SchemaDDL: "CREATE TABLE students (id INT);",
	})
	assert.Error(t, err)

	_, err = svc.Assist(ctx, uuid.New(), domain.AssistMode("review"), domain.AssistRequest{
		SchemaDDL: "CREATE TABLE students (id INT);",
	})
	assert.Error(t, err)
}

func TestAssistService_UnknownProvider(t *testing.T) {
	provider := NewMockProvider("mock")
	attemptRepo := new(MockAttemptRepo)
	svc := newTestService(provider, attemptRepo)

	_, err := svc.Assist(context.Background(), uuid.New(), domain.ModeGenerate, domain.AssistRequest{
		Question:    "anything",
		SchemaDDL:   "CREATE TABLE students (id INT);",
		LLMProvider: "no-such-provider",
	})
	assert.Error(t, err)
}

func TestAssistService_AttemptLogFailureIsNotFatal(t *testing.T) {
	provider := NewMockProvider("mock")
	attemptRepo := new(MockAttemptRepo)
	svc := newTestService(provider, attemptRepo)

	ctx := context.Background()

	provider.On("Complete", ctx, mock.AnythingOfType("llm.Request"), "mock-model").Return(&llm.Response{
		RawText: "CODE:SUCCESS\nSQL_STATEMENT:\nSELECT 1;",
	}, nil)
	attemptRepo.On("Create", ctx, mock.AnythingOfType("*domain.Attempt")).Return(assert.AnError)

	resp, err := svc.Assist(ctx, uuid.New(), domain.ModeGenerate, domain.AssistRequest{
		Question:  "one",
		SchemaDDL: "CREATE TABLE students (id INT);",
	})

	assert.NoError(t, err)
	assert.Equal(t, "SELECT 1;", resp.SQL)
}

func TestAssistService_ValidateSQL(t *testing.T) {
	svc := NewAssistService(llm.NewRouter("mock"), security.NewSQLValidator(), new(MockAttemptRepo))

	info := svc.ValidateSQL("SELECT * FROM students", nil)
	assert.True(t, info.OK)
	assert.Empty(t, info.Reason)

	info = svc.ValidateSQL("", nil)
	assert.False(t, info.OK)
	assert.Equal(t, "Empty SQL", info.Reason)

	info = svc.ValidateSQL("SELECT * FROM secrets", []string{"students"})
	assert.False(t, info.OK)
	assert.Contains(t, info.Reason, "secrets")
}

func TestAssistService_ListAttempts(t *testing.T) {
	attemptRepo := new(MockAttemptRepo)
	svc := NewAssistService(llm.NewRouter("mock"), security.NewSQLValidator(), attemptRepo)

	ctx := context.Background()
	userID := uuid.New()
	want := []domain.Attempt{{ID: uuid.New(), UserID: userID, Code: "SUCCESS"}}

	attemptRepo.On("ListByUser", ctx, userID, 50).Return(want, nil)

	got, err := svc.ListAttempts(ctx, userID)
	assert.NoError(t, err)
	assert.Equal(t, want, got)

	attemptRepo.AssertExpectations(t)
}
