package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInit(t *testing.T) {
	tests := []struct {
		level, env string
		want       zapcore.Level
	}{
		{"debug", "dev", zapcore.DebugLevel},
		{"WARN", "prod", zapcore.WarnLevel},
		{"nonsense", "prod", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.env, func(t *testing.T) {
			log, err := Init(tt.level, tt.env)
			require.NoError(t, err)
			defer log.Closer()
			assert.Equal(t, tt.want, log.Level.Level())
		})
	}
}

func TestFromContext(t *testing.T) {
	fallback := zap.NewNop()
	assert.Same(t, fallback, FromContext(context.Background(), fallback))

	scoped := zap.NewExample()
	ctx := WithLogger(context.Background(), scoped)
	assert.Same(t, scoped, FromContext(ctx, fallback))
}
