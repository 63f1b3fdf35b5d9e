package plugin

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

const testPkg = "github.com/damoang/angple-plugins/internal/plugin"

func TestIdentityOf(t *testing.T) {
	assert.Equal(t, testPkg+".MyPluginPoint", IdentityOf(MyPluginPoint{}))
	assert.Equal(t, testPkg+".MyPluginPoint", IdentityOf(&MyPluginPoint{}))
	assert.Equal(t, testPkg+".MyPlugin", IdentityOf(reflect.TypeOf(&MyPlugin{})))
}

func TestIdentityOf_Unnamed(t *testing.T) {
	assert.Equal(t, "", IdentityOf(nil))
	assert.Equal(t, "[]int", IdentityOf([]int{}))
	assert.Equal(t, "int", IdentityOf(1))
}

func TestShortName(t *testing.T) {
	assert.Equal(t, "MyPluginPoint", shortName(IdentityOf(MyPluginPoint{})))
	assert.Equal(t, "plain", shortName("plain"))
}
