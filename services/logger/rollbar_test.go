package logsvc

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/trezcool/schoolrecords/core"
	"github.com/trezcool/schoolrecords/core/user"
)

func TestRollbarLogger(t *testing.T) {
	conf := core.NewTestConfig()
	buf := new(bytes.Buffer)
	logger := NewRollbarLogger(zerolog.New(buf), conf)
	logger.Enable(false)

	usr := user.User{ID: 3, Username: "ann"}
	logger.Error("saving grade", errors.New("boom"), map[string]interface{}{"grade_id": 7}, usr)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decoding log entry: %v (%s)", err, buf.String())
	}
	want := map[string]interface{}{
		"level":    "error",
		"message":  "saving grade",
		"error":    "boom",
		"grade_id": float64(7),
		"user_id":  float64(3),
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("entry[%q] = %v; want %v", k, entry[k], v)
		}
	}
}

func TestRollbarLogger_prepare(t *testing.T) {
	logger := RollbarLogger{zl: zerolog.Nop()}
	err := errors.New("boom")

	args := logger.prepare("msg", []interface{}{err, user.User{ID: 1}, user.User{ID: 2}})
	if len(args) != 2 || args[0] != "msg" || args[1] != err {
		t.Errorf("prepare() = %v; want [msg boom]", args)
	}
}

func TestNewConsoleLogger_Level(t *testing.T) {
	conf := core.NewTestConfig()
	buf := new(bytes.Buffer)

	zl := NewConsoleLogger(buf, "API", conf)
	zl.Debug().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug entry written outside debug mode: %q", buf.String())
	}
	zl.Info().Msg("shown")
	if !bytes.Contains(buf.Bytes(), []byte("shown")) || !bytes.Contains(buf.Bytes(), []byte("API")) {
		t.Errorf("info entry missing: %q", buf.String())
	}
}
