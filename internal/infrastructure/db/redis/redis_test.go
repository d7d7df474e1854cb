package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigOptions_DefaultTimeout(t *testing.T) {
	opts := Config{Addr: "localhost:6379", DB: 2}.options()

	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, defaultTimeout, opts.DialTimeout)
	assert.Equal(t, defaultTimeout, opts.ReadTimeout)
	assert.Equal(t, defaultTimeout, opts.WriteTimeout)
}

func TestConfigOptions_CustomTimeout(t *testing.T) {
	opts := Config{Addr: "cache:6379", Password: "pw", Timeout: time.Second}.options()

	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, time.Second, opts.DialTimeout)
}

func TestConnect_RequiresAddr(t *testing.T) {
	_, err := Connect(context.Background(), Config{})
	require.Error(t, err)
}

func TestClose_Nil(t *testing.T) {
	assert.NoError(t, Close(nil))
}
