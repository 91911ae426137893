package extensibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/comalice/hsmx"
)

func TestLoggingDecorators(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core).Sugar()

	entered := false
	b := hsmx.NewMachineBuilder("idle")
	b.State("idle").
		Entry(LoggingAction(log, "enter-idle", func(*hsmx.Context) { entered = true })).
		On("ping", Logging(log, "ping", func(*hsmx.Context, hsmx.Event) hsmx.Outcome { return hsmx.Handled }))
	m, err := hsmx.New(b.MustBuild())
	require.NoError(t, err)

	_, err = m.Dispatch(hsmx.NewEvent("ping", nil))
	require.NoError(t, err)

	assert.True(t, entered)
	assert.Equal(t, 2, logs.FilterMessage("executing handler").Len()+logs.FilterMessage("handler completed").Len())
	assert.Equal(t, 1, logs.FilterMessage("action completed").Len())

	completed := logs.FilterMessage("handler completed").All()[0]
	assert.Equal(t, "handled", completed.ContextMap()["outcome"])
}
