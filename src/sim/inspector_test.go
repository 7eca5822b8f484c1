package sim

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func get(t *testing.T, h http.Handler, path string, into interface{}) int {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if into != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), into), "body %s", rec.Body.String())
	}
	return rec.Code
}

func TestInspectorEndpoints(t *testing.T) {
	m, _ := newMachine(t, 100, counters(2)...)
	m.SetRunID("7b0c")
	require.NoError(t, m.RunTicks(4))
	insp := NewInspector(m, zaptest.NewLogger(t))

	var st Status
	assert.Equal(t, http.StatusOK, get(t, insp, "/status", &st))
	assert.Equal(t, "7b0c", st.RunID)
	assert.Equal(t, uint64(4), st.Ticks)
	assert.Equal(t, 1, st.Current)

	var tasks []TaskStatus
	assert.Equal(t, http.StatusOK, get(t, insp, "/tasks", &tasks))
	require.Len(t, tasks, 2)
	assert.Equal(t, "ready", tasks[0].State)
	assert.Equal(t, "running", tasks[1].State)
	assert.Equal(t, "counter", tasks[1].Program)
	assert.Equal(t, uint64(2), tasks[0].Switches)

	var one TaskStatus
	assert.Equal(t, http.StatusOK, get(t, insp, "/tasks/1", &one))
	assert.Equal(t, 1, one.ID)

	var e ErrResponse
	assert.Equal(t, http.StatusNotFound, get(t, insp, "/tasks/9", &e))
	assert.Equal(t, http.StatusNotFound, e.HttpStatusCode)
	assert.Equal(t, http.StatusBadRequest, get(t, insp, "/tasks/first", nil))

	var trace []TrapRecord
	assert.Equal(t, http.StatusOK, get(t, insp, "/trace", &trace))
	assert.Len(t, trace, 4)
	var switches []TrapRecord
	assert.Equal(t, http.StatusOK, get(t, insp, "/trace?switches=1", &switches))
	for _, r := range switches {
		assert.True(t, r.Switched())
	}
}

func TestInspectorBeforeAnyTrap(t *testing.T) {
	m, _ := newMachine(t, 100)
	insp := NewInspector(m, nil)
	var tasks []TaskStatus
	assert.Equal(t, http.StatusOK, get(t, insp, "/tasks", &tasks))
	assert.Empty(t, tasks)
	var trace []TrapRecord
	assert.Equal(t, http.StatusOK, get(t, insp, "/trace", &trace))
	assert.Empty(t, trace)
}
