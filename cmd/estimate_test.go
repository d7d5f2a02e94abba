package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/grass-estimator/internal/request"
	"github.com/sells-group/grass-estimator/internal/workflow"
)

const wellFormed = "1. Approx 120.5 m²\n2. Moderately overgrown (8–15cm)\n3. Healthy and green"

// runEstimate executes estimateCmd with the given photos and returns stdout.
func runEstimate(t *testing.T, photos []string, format string) (string, error) {
	t.Helper()

	t.Cleanup(func() {
		estimatePhotos, estimateFormat, estimateSession = nil, formatText, "local"
		estimateObject, estimateHeight, estimateNotify = "", 0, false
		estimateCmd.SetOut(nil)
	})
	estimatePhotos = photos
	estimateFormat = format
	estimateSession = "test-session"

	var buf bytes.Buffer
	estimateCmd.SetOut(&buf)
	estimateCmd.SetContext(context.Background())

	err := estimateCmd.RunE(estimateCmd, nil)
	return buf.String(), err
}

func uploadServer(t *testing.T, status int, result string, files *atomic.Int32, fields *refFields) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/upload", r.URL.Path)
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		if files != nil {
			files.Store(int32(len(r.MultipartForm.File["files"])))
		}
		if fields != nil {
			fields.object = r.FormValue(request.FieldObjectName)
			fields.height = r.FormValue(request.FieldKnownHeight)
		}
		if status != http.StatusOK {
			http.Error(w, "boom", status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"result": result})
	}))
	t.Cleanup(ts.Close)
	return ts
}

type refFields struct {
	object string
	height string
}

func TestEstimateCmd_Success(t *testing.T) {
	var files atomic.Int32
	ts := uploadServer(t, http.StatusOK, wellFormed, &files, nil)

	c := testConfig(t)
	c.Estimator.BaseURL = ts.URL
	writePricing(t, c, `{"pricePerM2": 2.5}`)

	photos := []string{writePhoto(t, "a.png"), writePhoto(t, "b.png"), writePhoto(t, "c.png"), writePhoto(t, "d.png")}
	out, err := runEstimate(t, photos, formatText)
	require.NoError(t, err)

	assert.Equal(t, int32(3), files.Load())
	assert.Contains(t, out, "Approx 120.5 m²")
	assert.Contains(t, out, "[x] Moderately overgrown (8–15cm)")
	assert.Contains(t, out, "[x] Healthy and green")
	assert.Contains(t, out, "301.25")
}

func TestEstimateCmd_ReferenceObject(t *testing.T) {
	var got refFields
	ts := uploadServer(t, http.StatusOK, wellFormed, nil, &got)

	c := testConfig(t)
	c.Estimator.BaseURL = ts.URL

	estimateObject = "wheelie bin"
	estimateHeight = 1.1
	_, err := runEstimate(t, []string{writePhoto(t, "a.png")}, formatText)
	require.NoError(t, err)

	assert.Equal(t, "wheelie bin", got.object)
	assert.Equal(t, "1.1", got.height)
}

func TestEstimateCmd_JSONWithoutPricing(t *testing.T) {
	ts := uploadServer(t, http.StatusOK, wellFormed, nil, nil)

	c := testConfig(t)
	c.Estimator.BaseURL = ts.URL

	out, err := runEstimate(t, []string{writePhoto(t, "a.png")}, formatJSON)
	require.NoError(t, err)

	var st workflow.State
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, workflow.StatusSuccess, st.Status)
	require.NotNil(t, st.Result)
	assert.Nil(t, st.Result.Price)
	require.NotNil(t, st.Result.AreaM2)
	assert.InDelta(t, 120.5, *st.Result.AreaM2, 1e-9)
}

func TestEstimateCmd_ServiceFailure(t *testing.T) {
	ts := uploadServer(t, http.StatusInternalServerError, "", nil, nil)

	c := testConfig(t)
	c.Estimator.BaseURL = ts.URL

	out, err := runEstimate(t, []string{writePhoto(t, "a.png")}, formatText)
	require.Error(t, err)
	assert.Equal(t, workflow.MsgGenericFailed, err.Error())
	assert.Contains(t, out, workflow.MsgGenericFailed)
}

func TestEstimateCmd_NoPhotos(t *testing.T) {
	testConfig(t)

	_, err := runEstimate(t, nil, formatText)
	require.Error(t, err)
	assert.Equal(t, workflow.MsgNoPhotos, err.Error())
}

func TestEstimateCmd_UnknownFormat(t *testing.T) {
	testConfig(t)

	_, err := runEstimate(t, []string{writePhoto(t, "a.png")}, "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestEstimateCmd_NotifyNeedsCredentials(t *testing.T) {
	testConfig(t)

	estimateNotify = true
	_, err := runEstimate(t, []string{writePhoto(t, "a.png")}, formatText)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notify.service_id")
}
