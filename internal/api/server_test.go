package api

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/TrayForge/internal/faults"
	"github.com/piwi3910/TrayForge/internal/generate"
	"github.com/piwi3910/TrayForge/internal/mesh"
	"github.com/piwi3910/TrayForge/internal/model"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := New(Options{Workers: 2})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Close()
	})
	return ts
}

func testProject() model.Project {
	p := model.NewProject()
	tr := model.NewTray("Tokens", 0)
	tr.Params.TopLoaded = []model.StackSpec{
		model.NewTopStack("hex", 10, "Resources"),
		model.NewTopStack("circle", 6, "VP"),
	}
	b := model.NewBox("Base")
	b.Lid.EmbossName = false
	b.Trays = []model.Tray{tr}
	p.Boxes = []model.Box{b}
	return p
}

func post(t *testing.T, ts *httptest.Server, path string, p model.Project, box int) *http.Response {
	t.Helper()
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	body, err := json.Marshal(Request{Project: raw, Box: box})
	require.NoError(t, err)
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestValidate(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts, "/api/v1/validate", testProject(), 0)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ok ValidateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ok))
	assert.True(t, ok.Valid)
	assert.Empty(t, ok.Errors)

	p := testProject()
	p.Boxes[0].CustomWidth = 20
	p.Boxes[0].CustomHeight = 5
	resp = post(t, ts, "/api/v1/validate", p, 0)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var bad ValidateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&bad))
	assert.False(t, bad.Valid)
	assert.Len(t, bad.Errors, 2)
}

func TestLayout(t *testing.T) {
	ts := newTestServer(t)
	resp := post(t, ts, "/api/v1/layout", testProject(), 0)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res generate.BoxResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, generate.StageReady, res.Stage)
	require.NotNil(t, res.Arrangement)
	assert.Positive(t, res.Arrangement.ExteriorWidth)
	require.Len(t, res.RefLabels, 2)
	assert.Equal(t, "A1", res.RefLabels[0].RefCode)
	assert.Equal(t, "VP", res.RefLabels[1].Label)
}

func TestLayout_Errors(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts, "/api/v1/layout", testProject(), 3)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	p := testProject()
	p.Boxes[0].CustomDepth = 10
	resp = post(t, ts, "/api/v1/layout", p, 0)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var e ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	assert.Equal(t, faults.ErrCodeValidation, e.Code)
	assert.NotEmpty(t, e.Details)

	bad, err := http.Post(ts.URL+"/api/v1/layout", "application/json", bytes.NewBufferString("{not json"))
	require.NoError(t, err)
	defer bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestSTL(t *testing.T) {
	ts := newTestServer(t)

	for _, part := range []string{"box", "lid", "tray-a", "assembly"} {
		t.Run(part, func(t *testing.T) {
			resp := post(t, ts, "/api/v1/stl/"+part, testProject(), 0)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "model/stl", resp.Header.Get("Content-Type"))

			m, err := mesh.ReadSTL(resp.Body)
			require.NoError(t, err)
			assert.Positive(t, m.TriangleCount())
		})
	}
}

func TestSTL_UnknownPart(t *testing.T) {
	ts := newTestServer(t)
	resp := post(t, ts, "/api/v1/stl/spoon", testProject(), 0)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post(t, ts, "/api/v1/stl/tray-q", testProject(), 0)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPreview(t *testing.T) {
	ts := newTestServer(t)
	resp := post(t, ts, "/api/v1/preview", testProject(), 0)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	_, err := png.Decode(resp.Body)
	assert.NoError(t, err)
}

func TestBoxID(t *testing.T) {
	ts := newTestServer(t)
	p := testProject()
	second := model.NewBox("Second")
	p.Boxes = append(p.Boxes, second)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	body, err := json.Marshal(Request{Project: raw, BoxID: second.ID})
	require.NoError(t, err)
	resp, err := http.Post(ts.URL+"/api/v1/layout", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res generate.BoxResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, "Second", res.Box.Name)

	body, _ = json.Marshal(Request{Project: raw, BoxID: "missing"})
	missing, err := http.Post(ts.URL+"/api/v1/layout", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(faults.ErrCodeValidation))
	assert.Equal(t, http.StatusNotFound, statusFor(faults.ErrCodeNotFound))
	assert.Equal(t, http.StatusInternalServerError, statusFor(faults.ErrCodeGeneration))
	assert.Equal(t, http.StatusInternalServerError, statusFor(""))
}
