package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/linemk/shisha-ledger/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestMustLoadByPath_Success(t *testing.T) {
	// Устанавливаем обязательные переменные окружения
	os.Setenv("DB_PASSWORD", "mypassword")
	defer os.Unsetenv("DB_PASSWORD")

	// Пример содержимого конфигурационного файла
	content := `
env: "local"
http_server:
  address: "localhost:8080"
  timeout: "4s"
  idle_timeout: "60s"
database:
  host: "localhost"
  port: 5432
  user: "postgres"
  name: "ledger"
ledger:
  auto_create_accounts: true
  starting_balance: 500
nats:
  url: "nats://localhost:4222"
  subject: "shisha.ledger"
migrations:
  path: "./migrations"
`
	// Создаем временный файл с конфигурацией
	tmpFile, err := os.CreateTemp("", "config_test_*.yaml")
	assert.NoError(t, err)
	defer os.Remove(tmpFile.Name())

	_, err = tmpFile.WriteString(content)
	assert.NoError(t, err)
	err = tmpFile.Close()
	assert.NoError(t, err)

	// Загружаем конфигурацию из временного файла
	cfg := config.MustLoadByPath(tmpFile.Name())

	// Проверяем, что конфигурация загружена корректно
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "localhost:8080", cfg.HTTPServer.Address)
	assert.Equal(t, 4*time.Second, cfg.HTTPServer.Timeout)
	assert.Equal(t, 60*time.Second, cfg.HTTPServer.IdleTimeout)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "postgres", cfg.Database.User)
	assert.Equal(t, "ledger", cfg.Database.Name)
	assert.True(t, cfg.Ledger.AutoCreateAccounts)
	assert.Equal(t, 500, cfg.Ledger.StartingBalance)
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
	assert.Equal(t, "shisha.ledger", cfg.NATS.Subject)
	assert.Equal(t, "./migrations", cfg.Migrations.Path)
}

func TestMustLoadByPath_Defaults(t *testing.T) {
	os.Setenv("DB_PASSWORD", "mypassword")
	defer os.Unsetenv("DB_PASSWORD")

	// Минимальный конфиг: секции ledger и nats опущены
	content := `
database:
  user: "postgres"
  name: "ledger"
`
	tmpFile, err := os.CreateTemp("", "config_test_*.yaml")
	assert.NoError(t, err)
	defer os.Remove(tmpFile.Name())

	_, err = tmpFile.WriteString(content)
	assert.NoError(t, err)
	assert.NoError(t, tmpFile.Close())

	cfg := config.MustLoadByPath(tmpFile.Name())

	// Без явных настроек аккаунты не создаются автоматически,
	// а публикация событий выключена.
	assert.False(t, cfg.Ledger.AutoCreateAccounts)
	assert.Equal(t, 0, cfg.Ledger.StartingBalance)
	assert.Equal(t, "", cfg.NATS.URL)
	assert.Equal(t, "shisha.ledger", cfg.NATS.Subject)
	assert.Equal(t, "development", cfg.Env)
}

func TestMustLoadByPath_FileNotFound(t *testing.T) {
	// Ожидаем панику, если файла не существует
	assert.Panics(t, func() {
		config.MustLoadByPath("non_existent_config.yaml")
	})
}
