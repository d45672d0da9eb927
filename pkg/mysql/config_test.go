package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_DSN(t *testing.T) {
	cfg := Config{Host: "db", Port: 3306, User: "ledger", Password: "secret", DBName: "payments"}
	assert.Equal(t, "ledger:secret@tcp(db:3306)/payments?charset=utf8mb4&parseTime=True&loc=Local", cfg.DSN())
}

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"info", "warn", "error", "silent", ""} {
		assert.NotNil(t, newLogger(level), level)
	}
}
