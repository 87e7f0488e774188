package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEcho() (*echo.Echo, *Store) {
	store := NewStore()
	e := echo.New()
	New(store).Register(e)
	return e, store
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type errorResponse struct {
	Error ErrorBody `json:"error"`
}

func createModel(t *testing.T, e *echo.Echo, body string) ModelInfo {
	t.Helper()
	rec := doJSON(t, e, http.MethodPost, "/v1/models", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[ModelInfo](t, rec)
}

func TestListTypes(t *testing.T) {
	e, _ := newTestEcho()

	rec := doJSON(t, e, http.MethodGet, "/v1/types", "")
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[struct {
		Data []TypeInfo `json:"data"`
	}](t, rec)
	assert.Equal(t, []TypeInfo{
		{ID: "linear", Arity: 1, Usage: "input_size"},
		{ID: "logistic", Arity: 1, Usage: "input_size"},
		{ID: "multiclass", Arity: 2, Usage: "input_size num_classes"},
		{ID: "mlp", Arity: 3, Usage: "input_size hidden_size output_size"},
	}, got.Data)
}

func TestModelLifecycle(t *testing.T) {
	e, store := newTestEcho()

	info := createModel(t, e, `{"type_id":"linear","shape":[3],"parameters":[0.5,-0.3,0.8,0.1]}`)
	assert.NotEmpty(t, info.ID)
	assert.Equal(t, "Linear Regression", info.ModelType)
	assert.Equal(t, 3, info.InputSize)
	assert.Equal(t, 1, info.OutputSize)
	assert.Equal(t, 4, info.ParameterCount)
	assert.Equal(t, 1, store.Len())

	rec := doJSON(t, e, http.MethodPost, "/v1/models/"+info.ID+"/forward", `{"input":[1,2,3]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	fwd := decode[ForwardResponse](t, rec)
	require.Len(t, fwd.Output, 1)
	assert.InDelta(t, 2.4, fwd.Output[0], 1e-12)
	assert.Nil(t, fwd.PredictedClass)

	rec = doJSON(t, e, http.MethodGet, "/v1/models/"+info.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[ModelInfo](t, rec)
	assert.Equal(t, []float64{0.5, -0.3, 0.8, 0.1}, got.Parameters)
	assert.Equal(t, info.Hash, got.Hash)

	rec = doJSON(t, e, http.MethodDelete, "/v1/models/"+info.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"deleted":true`)

	rec = doJSON(t, e, http.MethodGet, "/v1/models/"+info.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 0, store.Len())
}

func TestForward_PredictedClass(t *testing.T) {
	e, _ := newTestEcho()

	info := createModel(t, e, `{"type_id":"multiclass","shape":[2,3],"parameters":[1.0,0.5,-0.5,1.2,0.2,-0.8,0.2,-0.1,0.3]}`)

	rec := doJSON(t, e, http.MethodPost, "/v1/models/"+info.ID+"/forward", `{"input":[0.6,-0.4]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	fwd := decode[ForwardResponse](t, rec)
	require.Len(t, fwd.Output, 3)
	require.NotNil(t, fwd.PredictedClass)
	assert.Equal(t, 2, *fwd.PredictedClass)
	assert.InDelta(t, 0.48373280714154193, fwd.Output[2], 1e-9)
}

func TestForward_PredictedClassTieTakesFirst(t *testing.T) {
	e, _ := newTestEcho()

	// zero parameters give equal probabilities for every class
	info := createModel(t, e, `{"type_id":"multiclass","shape":[2,4]}`)

	rec := doJSON(t, e, http.MethodPost, "/v1/models/"+info.ID+"/forward", `{"input":[3,-1]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	fwd := decode[ForwardResponse](t, rec)
	require.Len(t, fwd.Output, 4)
	require.NotNil(t, fwd.PredictedClass)
	assert.Equal(t, 0, *fwd.PredictedClass)
}

func TestSetParameters(t *testing.T) {
	e, _ := newTestEcho()
	info := createModel(t, e, `{"type_id":"logistic","shape":[2]}`)

	rec := doJSON(t, e, http.MethodPost, "/v1/models/"+info.ID+"/forward", `{"input":[5,-5]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 0.5, decode[ForwardResponse](t, rec).Output[0], 1e-12)

	rec = doJSON(t, e, http.MethodPut, "/v1/models/"+info.ID+"/parameters", `{"parameters":[1.2,-0.8,0.5]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEqual(t, info.Hash, decode[ModelInfo](t, rec).Hash)

	// a rejected update leaves the previous parameters in place
	rec = doJSON(t, e, http.MethodPut, "/v1/models/"+info.ID+"/parameters", `{"parameters":[1,2]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "dimension_mismatch", decode[errorResponse](t, rec).Error.Type)

	rec = doJSON(t, e, http.MethodPost, "/v1/models/"+info.ID+"/forward", `{"input":[0.8,-0.3]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 0.8455347349164652, decode[ForwardResponse](t, rec).Output[0], 1e-12)
}

func TestErrors(t *testing.T) {
	e, _ := newTestEcho()
	info := createModel(t, e, `{"type_id":"mlp","shape":[2,3,2]}`)

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		wantCode int
		wantType string
	}{
		{"unknown type", http.MethodPost, "/v1/models", `{"type_id":"cnn","shape":[2]}`, http.StatusBadRequest, "unknown_model_type"},
		{"wrong arity", http.MethodPost, "/v1/models", `{"type_id":"mlp","shape":[2,3]}`, http.StatusBadRequest, "unknown_model_type"},
		{"oversized shape", http.MethodPost, "/v1/models", `{"type_id":"mlp","shape":[100000,100000,1]}`, http.StatusBadRequest, "unknown_model_type"},
		{"parameter count", http.MethodPost, "/v1/models", `{"type_id":"linear","shape":[2],"parameters":[1]}`, http.StatusBadRequest, "dimension_mismatch"},
		{"missing type", http.MethodPost, "/v1/models", `{"shape":[2]}`, http.StatusBadRequest, "invalid_request_error"},
		{"malformed body", http.MethodPost, "/v1/models", `{"type_id":`, http.StatusBadRequest, "invalid_request_error"},
		{"input length", http.MethodPost, "/v1/models/" + info.ID + "/forward", `{"input":[1,2,3]}`, http.StatusBadRequest, "dimension_mismatch"},
		{"unknown model", http.MethodPost, "/v1/models/nope/forward", `{"input":[1,2]}`, http.StatusNotFound, "not_found_error"},
		{"delete unknown", http.MethodDelete, "/v1/models/nope", "", http.StatusNotFound, "not_found_error"},
		{"parameters unknown", http.MethodPut, "/v1/models/nope/parameters", `{"parameters":[]}`, http.StatusNotFound, "not_found_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, e, tt.method, tt.path, tt.body)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantType, decode[errorResponse](t, rec).Error.Type)
		})
	}
}

func TestListModels_CreationOrder(t *testing.T) {
	e, _ := newTestEcho()
	a := createModel(t, e, `{"type_id":"linear","shape":[1]}`)
	b := createModel(t, e, `{"type_id":"mlp","shape":[1,2,1]}`)
	c := createModel(t, e, `{"type_id":"logistic","shape":[4]}`)

	rec := doJSON(t, e, http.MethodDelete, "/v1/models/"+b.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, e, http.MethodGet, "/v1/models", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[struct {
		Data []ModelInfo `json:"data"`
	}](t, rec)
	require.Len(t, got.Data, 2)
	assert.Equal(t, a.ID, got.Data[0].ID)
	assert.Equal(t, c.ID, got.Data[1].ID)
	assert.Nil(t, got.Data[0].Parameters)
}

func TestConcurrentForwardAndUpdate(t *testing.T) {
	e, _ := newTestEcho()
	info := createModel(t, e, `{"type_id":"linear","shape":[2],"parameters":[1,1,0]}`)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			rec := doJSON(t, e, http.MethodPost, "/v1/models/"+info.ID+"/forward", `{"input":[1,1]}`)
			assert.Equal(t, http.StatusOK, rec.Code)
		}()
		go func() {
			defer wg.Done()
			rec := doJSON(t, e, http.MethodPut, "/v1/models/"+info.ID+"/parameters", `{"parameters":[2,2,0]}`)
			assert.Equal(t, http.StatusOK, rec.Code)
		}()
	}
	wg.Wait()

	rec := doJSON(t, e, http.MethodPost, "/v1/models/"+info.ID+"/forward", `{"input":[1,1]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 4.0, decode[ForwardResponse](t, rec).Output[0], 1e-12)
}
