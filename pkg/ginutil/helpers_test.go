package ginutil

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newContext(target string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", target, nil)
	return c
}

func TestQueryInt(t *testing.T) {
	c := newContext("/?n=7&bad=x")
	assert.Equal(t, 7, QueryInt(c, "n", 1))
	assert.Equal(t, 1, QueryInt(c, "bad", 1))
	assert.Equal(t, 3, QueryInt(c, "missing", 3))
}

func TestParamInt64(t *testing.T) {
	c := newContext("/")
	c.Params = gin.Params{{Key: "id", Value: "42"}, {Key: "neg", Value: "-1"}, {Key: "str", Value: "abc"}}

	id, err := ParamInt64(c, "id")
	assert.NoError(t, err)
	assert.EqualValues(t, 42, id)

	_, err = ParamInt64(c, "neg")
	assert.Error(t, err)
	_, err = ParamInt64(c, "str")
	assert.Error(t, err)
}

func TestPage(t *testing.T) {
	page, limit := Page(newContext("/"), 20, 100)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, limit)

	page, limit = Page(newContext("/?page=0&limit=500"), 20, 100)
	assert.Equal(t, 1, page)
	assert.Equal(t, 100, limit)

	page, limit = Page(newContext("/?page=3&limit=-5"), 20, 100)
	assert.Equal(t, 3, page)
	assert.Equal(t, 20, limit)
}
