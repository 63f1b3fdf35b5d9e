package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/damoang/angple-plugins/internal/pluginstore/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFromError(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusFromError(fmt.Errorf("%w: plugin x", domain.ErrNotFound)))
	assert.Equal(t, http.StatusBadRequest, StatusFromError(fmt.Errorf("%w: wrong kind", domain.ErrUsage)))
	assert.Equal(t, http.StatusConflict, StatusFromError(domain.ErrUnresolvable))
	assert.Equal(t, http.StatusInternalServerError, StatusFromError(errors.New("db down")))
}

func TestCreatedResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	CreatedResponse(c, gin.H{"id": 7})

	assert.Equal(t, http.StatusCreated, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 7, body["data"].(map[string]interface{})["id"])
	assert.NotContains(t, body, "error")
	assert.NotContains(t, body, "meta")
}

func TestHandleError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	HandleError(c, "플러그인을 찾을 수 없습니다", fmt.Errorf("%w: plugin #3", domain.ErrNotFound))

	assert.Equal(t, http.StatusNotFound, w.Code)
	var body struct {
		Error ErrorInfo `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
	assert.Equal(t, "플러그인을 찾을 수 없습니다", body.Error.Message)
	assert.Contains(t, body.Error.Details, "plugin #3")
}
