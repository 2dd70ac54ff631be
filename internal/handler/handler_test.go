package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/catprepedge/catprep-backend/internal/model"
	"github.com/catprepedge/catprep-backend/internal/repository"
	"github.com/catprepedge/catprep-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// mapSource serves question payloads keyed by "section/topic".
type mapSource map[string]string

func (m mapSource) Fetch(ctx context.Context, section, topic string) ([]byte, error) {
	payload, ok := m[section+"/"+topic]
	if !ok {
		return nil, &repository.StatusError{URL: m.Describe(section, topic), StatusCode: http.StatusNotFound}
	}
	return []byte(payload), nil
}

func (m mapSource) Describe(section, topic string) string {
	return "mem://" + section + "/" + topic
}

const averagesJSON = `[
	{"id":1,"question":"Average of $2$ and $4$?","options":{"a":"2","b":"3","c":"4"},"answer":"b","explanation":"$(2+4)/2 = 3$","topic":"Averages","section":"QA"},
	{"id":2,"question":"Average of $1,2,3$?","options":{"a":"2","b":"3"},"answer":"a","topic":"Averages","section":"QA"},
	{"id":3,"question":"Free response: average of $10$ and $20$","answer":"15","topic":"Averages","section":"QA"}
]`

func testQuestionService() *service.QuestionService {
	return service.NewQuestionService(mapSource{
		"QA/Averages": averagesJSON,
		"QA/Empty":    `[]`,
	}, nil, 0, zerolog.Nop())
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
	Pagination *struct {
		Page       int `json:"page"`
		TotalItems int `json:"total_items"`
	} `json:"pagination"`
}

func doJSON(t *testing.T, r http.Handler, method, target string) (int, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, target, nil))

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func TestQuestionHandler_ListQuestions(t *testing.T) {
	h := NewQuestionHandler(testQuestionService())
	r := gin.New()
	r.GET("/questions", h.ListQuestions)

	code, env := doJSON(t, r, http.MethodGet, "/questions?section=QA&topic=Averages")
	require.Equal(t, http.StatusOK, code)
	var body struct {
		Total     int              `json:"total"`
		Questions []model.Question `json:"questions"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, 3, body.Total)
	assert.Equal(t, "b", body.Questions[0].Answer)

	for _, tc := range []struct {
		target string
		status int
		code   string
	}{
		{"/questions?section=QA", http.StatusBadRequest, "MISSING_PARAMETER"},
		{"/questions?section=QA&topic=Empty", http.StatusNotFound, "NO_QUESTIONS"},
		{"/questions?section=QA&topic=Unknown", http.StatusBadGateway, "FETCH_FAILED"},
	} {
		code, env := doJSON(t, r, http.MethodGet, tc.target)
		assert.Equal(t, tc.status, code, tc.target)
		require.NotNil(t, env.Error, tc.target)
		assert.Equal(t, tc.code, env.Error.Code, tc.target)
	}
}

func TestCatalogHandler(t *testing.T) {
	h := NewCatalogHandler(service.NewCatalogService())
	r := gin.New()
	r.GET("/mock-tests", h.ListSections)
	r.GET("/mock-tests/:code", h.GetSection)

	code, env := doJSON(t, r, http.MethodGet, "/mock-tests")
	require.Equal(t, http.StatusOK, code)
	var list struct {
		Sections []model.MockTestSection `json:"sections"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list.Sections, 3)

	code, env = doJSON(t, r, http.MethodGet, "/mock-tests/dilr")
	require.Equal(t, http.StatusOK, code)
	var one struct {
		Section model.MockTestSection `json:"section"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &one))
	assert.Equal(t, "DILR", one.Section.Code)

	code, _ = doJSON(t, r, http.MethodGet, "/mock-tests/gk")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestLibraryHandler_RedactsForAnonymous(t *testing.T) {
	svc := service.NewLibraryService(repository.NewResourceRepositoryFrom([]model.Resource{
		{Title: "Free Notes", Section: "QA", ViewURL: "free-url"},
		{Title: "Paid Notes", Section: "QA", ViewURL: "paid-url", Premium: true},
	}))
	h := NewLibraryHandler(svc)
	r := gin.New()
	r.GET("/library", h.ListResources)

	code, env := doJSON(t, r, http.MethodGet, "/library?section=QA")
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 2, env.Pagination.TotalItems)

	var body model.LibraryListResponse
	require.NoError(t, json.Unmarshal(env.Data, &body))
	require.Len(t, body.Resources, 2)
	assert.Equal(t, "free-url", body.Resources[0].ViewURL)
	assert.Empty(t, body.Resources[1].ViewURL)
}

func TestCollegeHandler(t *testing.T) {
	svc := service.NewCollegeService(repository.NewCollegeRepositoryFrom([]model.College{
		{ID: "iim-ahmedabad", Name: "IIM Ahmedabad", Location: "Ahmedabad, Gujarat"},
	}))
	h := NewCollegeHandler(svc)
	r := gin.New()
	r.GET("/colleges", h.ListColleges)
	r.GET("/colleges/:id", h.GetCollege)

	code, _ := doJSON(t, r, http.MethodGet, "/colleges?search=ahmedabad")
	assert.Equal(t, http.StatusOK, code)

	code, _ = doJSON(t, r, http.MethodGet, "/colleges/iim-ahmedabad")
	assert.Equal(t, http.StatusOK, code)

	code, env := doJSON(t, r, http.MethodGet, "/colleges/nowhere")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}
