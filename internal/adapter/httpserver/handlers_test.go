package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	httpserver "github.com/ParthivReddyY/ai-interviewer/internal/adapter/httpserver"
	"github.com/ParthivReddyY/ai-interviewer/internal/config"
	"github.com/ParthivReddyY/ai-interviewer/internal/domain"
	domainmocks "github.com/ParthivReddyY/ai-interviewer/internal/domain/mocks"
	"github.com/ParthivReddyY/ai-interviewer/internal/service/fallback"
	"github.com/ParthivReddyY/ai-interviewer/internal/service/resumeparse"
	"github.com/ParthivReddyY/ai-interviewer/internal/usecase"
)

func newTestServer(llm domain.ResilientCompleter) *httpserver.Server {
	budgets := config.DefaultRetryBudgets()
	return httpserver.NewServer(
		config.Config{Port: 8080},
		usecase.NewQuestionService(llm, fallback.MustNew(), budgets.Questions),
		usecase.NewEvaluationService(llm, budgets),
		usecase.NewSummaryService(llm, budgets.Summary),
		usecase.NewResumeService(llm, resumeparse.New(), nil, budgets.Resume, false),
		0,
		nil,
	)
}

func doJSON(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

type errorBody struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var eb errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &eb))
	return eb
}

const interviewJSON = `{
	"questions": [
		{"id": "q1", "text": "What is a closure?", "difficulty": "easy", "timeLimitSeconds": 20},
		{"id": "q2", "text": "Design a cache.", "difficulty": "hard", "timeLimitSeconds": 120}
	],
	"answers": [
		{"questionId": "q1", "text": "A function that captures variables from its scope.", "timeSpentSeconds": 10},
		{"questionId": "q2", "text": "Use an LRU with a hash map and a linked list.", "timeSpentSeconds": 90}
	]
}`

func TestQuestionsHandler(t *testing.T) {
	t.Parallel()
	rec := doJSON(t, newTestServer(nil).QuestionsHandler(), `{"candidateName": "Ada Lovelace"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var body struct {
		Questions []domain.Question `json:"questions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Questions, domain.QuestionSetSize)
	assert.Equal(t, 20, body.Questions[0].TimeLimitSeconds)
}

func TestQuestionsHandler_InvalidJSON(t *testing.T) {
	t.Parallel()
	rec := doJSON(t, newTestServer(nil).QuestionsHandler(), `{"candidateName":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_ARGUMENT", decodeError(t, rec).Error.Code)
}

func TestEvaluateHandler(t *testing.T) {
	t.Parallel()
	llm := domainmocks.NewResilientCompleter(t)
	llm.EXPECT().CompleteWithResilience(mock.Anything, mock.Anything, 2).
		Return(`{"evaluations": [{"score": 8, "feedback": "Good"}, {"score": 6, "feedback": "Fair"}]}`, nil).Once()

	rec := doJSON(t, newTestServer(llm).EvaluateHandler(), interviewJSON)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res domain.EvaluationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 7.0, res.OverallScore)
	require.Len(t, res.PerAnswer, 2)
	assert.Equal(t, "q2", res.PerAnswer[1].QuestionID)
}

func TestEvaluateHandler_InvalidInput(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		body    string
		details map[string]any
	}{
		{
			name:    "missing answers",
			body:    `{"questions": [{"id": "q1", "text": "t", "difficulty": "easy"}]}`,
			details: map[string]any{"answers": "required"},
		},
		{
			name:    "bad difficulty",
			body:    `{"questions": [{"id": "q1", "text": "t", "difficulty": "extreme"}], "answers": [{"questionId": "q1"}]}`,
			details: map[string]any{"questions[0].difficulty": "oneof"},
		},
		{
			name: "unknown question",
			body: `{"questions": [{"id": "q1", "text": "t", "difficulty": "easy"}], "answers": [{"questionId": "q9"}]}`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec := doJSON(t, newTestServer(nil).EvaluateHandler(), tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			eb := decodeError(t, rec)
			assert.Equal(t, "INVALID_ARGUMENT", eb.Error.Code)
			if tc.details != nil {
				assert.Equal(t, tc.details, eb.Error.Details)
			}
		})
	}
}

func TestQuickEvaluateHandler_FallsBackWithoutClient(t *testing.T) {
	t.Parallel()
	body := `{"question": {"id": "q1", "text": "What is a closure?", "difficulty": "easy"},
		"answer": {"questionId": "q1", "text": "A closure keeps variables alive.", "timeSpentSeconds": 5}}`
	rec := doJSON(t, newTestServer(nil).QuickEvaluateHandler(), body)
	require.Equal(t, http.StatusOK, rec.Code)

	var q domain.QuickEvaluation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &q))
	assert.True(t, fallback.IsUnavailableFeedback(q.Feedback))
	assert.GreaterOrEqual(t, q.Score, 1.0)
}

func TestSummaryHandler(t *testing.T) {
	t.Parallel()
	rec := doJSON(t, newTestServer(nil).SummaryHandler(), `{"answers": [], "finalScore": 0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["summary"], "INTERVIEW PERFORMANCE SUMMARY")

	rec = doJSON(t, newTestServer(nil).SummaryHandler(), `{"answers": [], "finalScore": 11}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string]any{"finalScore": "lte"}, decodeError(t, rec).Error.Details)
}

func TestParseResumeHandler_JSON(t *testing.T) {
	t.Parallel()
	rec := doJSON(t, newTestServer(nil).ParseResumeHandler(), `{"text": "Jane Doe\njane.doe@example.com\n(555) 123-4567"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var p domain.ResumeProfile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "Jane Doe", p.Name)
	assert.Equal(t, domain.ParsingMethodFallback, p.ParsingMethod)

	rec = doJSON(t, newTestServer(nil).ParseResumeHandler(), `{"text": ""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func multipartRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/v1/resume/parse", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestParseResumeHandler_Multipart(t *testing.T) {
	t.Parallel()
	h := newTestServer(nil).ParseResumeHandler()

	rec := httptest.NewRecorder()
	h(rec, multipartRequest(t, "file", "resume.txt", []byte("Jane Doe\njane.doe@example.com\n(555) 123-4567\n")))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "jane.doe@example.com")

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	rec = httptest.NewRecorder()
	h(rec, multipartRequest(t, "file", "resume.txt", png))
	require.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	eb := decodeError(t, rec)
	assert.Equal(t, "UNSUPPORTED_MEDIA_TYPE", eb.Error.Code)
	assert.Equal(t, "image/png", eb.Error.Details["mime"])

	rec = httptest.NewRecorder()
	h(rec, multipartRequest(t, "cv", "resume.txt", []byte("text")))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string]any{"field": "file"}, decodeError(t, rec).Error.Details)
}

func TestBodyLimit(t *testing.T) {
	t.Parallel()
	h := httpserver.BodyLimit(32)(newTestServer(nil).ParseResumeHandler())
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"text": "`+strings.Repeat("a", 100)+`"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "PAYLOAD_TOO_LARGE", decodeError(t, rec).Error.Code)
}

func TestAcceptNegotiation(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	newTestServer(nil).QuestionsHandler()(rec, req)
	require.Equal(t, http.StatusNotAcceptable, rec.Code)
	assert.Equal(t, "NOT_ACCEPTABLE", decodeError(t, rec).Error.Code)
}

func TestReadyzHandler(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		redis  func(context.Context) error
		creds  int
		status int
	}{
		{name: "no redis, no credentials", status: http.StatusOK},
		{name: "redis up", redis: func(context.Context) error { return nil }, creds: 2, status: http.StatusOK},
		{name: "redis down", redis: func(context.Context) error { return errors.New("dial tcp: refused") }, creds: 1, status: http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := newTestServer(nil)
			s.RedisCheck = tc.redis
			s.Credentials = tc.creds
			rec := httptest.NewRecorder()
			s.ReadyzHandler()(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			require.Equal(t, tc.status, rec.Code)

			var body struct {
				Checks []struct {
					Name string `json:"name"`
					OK   bool   `json:"ok"`
				} `json:"checks"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "llm", body.Checks[len(body.Checks)-1].Name)
		})
	}
}

func TestHealthzHandler(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()
	newTestServer(nil).HealthzHandler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
