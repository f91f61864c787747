package core

import (
	"strings"
	"testing"
	"time"
)

func TestNewConfig(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("TEST_API_MAXPAGESIZE", "50")
	t.Setenv("TEST_SERVER_SHUTDOWNTIMEOUT", "9s")

	conf, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig() unexpected error = %v", err)
	}
	if conf.Env != EnvTest || !conf.TestMode {
		t.Errorf("NewConfig() env = %s, testMode = %v; want TEST, true", conf.Env, conf.TestMode)
	}
	if conf.API.MaxPageSize != 50 {
		t.Errorf("API.MaxPageSize = %d; want 50", conf.API.MaxPageSize)
	}
	if conf.API.DefaultPageSize != 20 {
		t.Errorf("API.DefaultPageSize = %d; want 20", conf.API.DefaultPageSize)
	}
	if conf.Server.ShutdownTimeout != 9*time.Second {
		t.Errorf("Server.ShutdownTimeout = %v; want 9s", conf.Server.ShutdownTimeout)
	}
	if conf.JWT.Expiry() != time.Hour {
		t.Errorf("JWT.Expiry() = %v; want 1h", conf.JWT.Expiry())
	}
	if conf.JWT.RefreshExpiry() != 7*24*time.Hour {
		t.Errorf("JWT.RefreshExpiry() = %v; want 168h", conf.JWT.RefreshExpiry())
	}
	if conf.WorkDir == "" {
		t.Error("WorkDir not set")
	}
}

func TestNewConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "unknown env", env: map[string]string{"ENV": "staging"}, wantErr: `unknown ENV "STAGING"`},
		{name: "short jwt secret", env: map[string]string{"ENV": "TEST", "TEST_JWT_SECRETKEY": "too-short"}, wantErr: "SecretKey"},
		{name: "zero expiry", env: map[string]string{"ENV": "TEST", "TEST_JWT_EXPIRYMINUTES": "0"}, wantErr: "ExpiryMinutes"},
		{name: "zero refresh expiry", env: map[string]string{"ENV": "TEST", "TEST_JWT_REFRESHTOKENEXPIRYDAYS": "0"}, wantErr: "RefreshTokenExpiryDays"},
		{name: "negative clock skew", env: map[string]string{"ENV": "TEST", "TEST_JWT_CLOCKSKEWMINUTES": "-1"}, wantErr: "ClockSkewMinutes"},
		{name: "default page size above max", env: map[string]string{"ENV": "TEST", "TEST_API_DEFAULTPAGESIZE": "500"}, wantErr: "DefaultPageSize"},
		{name: "pass mark out of range", env: map[string]string{"ENV": "TEST", "TEST_GRADES_PASSMARK": "101"}, wantErr: "PassMark"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := NewConfig()
			if err == nil {
				t.Fatal("NewConfig() expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("NewConfig() error = %v; want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestNewTestConfig(t *testing.T) {
	conf := NewTestConfig()
	if err := conf.Validate(); err != nil {
		t.Errorf("NewTestConfig().Validate() = %v", err)
	}
	if !conf.TestMode || conf.Debug {
		t.Errorf("NewTestConfig() testMode = %v, debug = %v", conf.TestMode, conf.Debug)
	}
	if got := conf.DefaultFromEmail(); got.Address != "noreply@localhost" || got.Name != "Masomo" {
		t.Errorf("DefaultFromEmail() = %v", got)
	}
}
